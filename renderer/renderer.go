// Package renderer turns engine reports into markdown. It owns no state and
// performs no computation beyond formatting: every number it prints comes
// from an engine query.
package renderer

import (
	"fmt"
	"strings"
	"text/template"
)

// RenderOverview renders the dashboard to a markdown string.
func RenderOverview(o *Overview) string {
	partials := map[string]string{
		"overview_title":     overviewTitleTemplate,
		"overview_wallets":   overviewWalletsTemplate,
		"overview_month":     overviewMonthTemplate,
		"overview_budgets":   overviewBudgetsTemplate,
		"overview_positions": overviewPositionsTemplate,
	}
	return renderTemplate("overview", overviewMarkdownTemplate, partials, o)
}

// renderTemplate is a generic utility to render a main template that depends
// on several partials.
func renderTemplate(templateName, mainContent string, partials map[string]string, data any) string {
	tmpl, err := template.New(templateName).Parse(mainContent)
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", templateName, err)
	}
	for name, content := range partials {
		if _, err := tmpl.New(name).Parse(content); err != nil {
			return fmt.Sprintf("error parsing partial template %q: %v", name, err)
		}
	}
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
