package renderer

import (
	"github.com/moneta-dev/moneta"
)

// Overview is a struct to represent the dashboard data for rendering.
type Overview struct {
	Date            string          `json:"date"`
	Currency        string          `json:"currency"`
	TotalBalance    moneta.Money    `json:"totalBalance"`
	Wallets         []WalletLine    `json:"wallets"`
	Income          moneta.Money    `json:"income"`
	Expenses        moneta.Money    `json:"expenses"`
	Net             moneta.Money    `json:"net"`
	Budgets         []BudgetLine    `json:"budgets,omitempty"`
	DebtIOwe        moneta.Money    `json:"debtIOwe"`
	DebtOwedToMe    moneta.Money    `json:"debtOwedToMe"`
	CryptoValue     moneta.Money    `json:"cryptoValue"`
	InvestmentValue moneta.Money    `json:"investmentValue"`
}

// WalletLine represents a single wallet's state in an overview.
type WalletLine struct {
	Name      string       `json:"name"`
	Balance   moneta.Money `json:"balance"`
	Converted moneta.Money `json:"converted"`
}

// BudgetLine holds one budget entry with its actual-vs-planned figures.
type BudgetLine struct {
	Category  string       `json:"category"`
	Type      string       `json:"type"`
	Planned   moneta.Money `json:"planned"`
	Actual    moneta.Money `json:"actual"`
	Limit     moneta.Money `json:"limit"`
	HasLimit  bool         `json:"hasLimit"`
	OverLimit bool         `json:"overLimit"`
}

// NewOverview creates a renderer.Overview from a moneta.Overview.
func NewOverview(o *moneta.Overview) *Overview {
	r := &Overview{
		Date:            o.Date.String(),
		Currency:        o.Currency,
		TotalBalance:    o.TotalBalance,
		Income:          o.Month.Income,
		Expenses:        o.Month.Expenses,
		Net:             o.Month.Net,
		DebtIOwe:        o.DebtIOwe,
		DebtOwedToMe:    o.DebtOwedToMe,
		CryptoValue:     o.CryptoValue,
		InvestmentValue: o.InvestmentValue,
	}
	for _, w := range o.Wallets {
		r.Wallets = append(r.Wallets, WalletLine{
			Name:      w.Wallet.Name,
			Balance:   w.Wallet.Balance(),
			Converted: w.Converted,
		})
	}
	for _, b := range o.Budgets {
		r.Budgets = append(r.Budgets, BudgetLine{
			Category:  b.Entry.Category,
			Type:      b.Entry.Type.String(),
			Planned:   b.Entry.Amount,
			Actual:    b.Actual,
			Limit:     b.Entry.Limit,
			HasLimit:  b.Entry.HasLimit(),
			OverLimit: b.OverLimit,
		})
	}
	return r
}

// --- Template Definitions ---

const (
	// overviewMarkdownTemplate is the main layout template. It calls partials
	// for each section.
	overviewMarkdownTemplate = `
{{- template "overview_title" . -}}
{{- template "overview_wallets" . -}}
{{- template "overview_month" . -}}
{{- template "overview_budgets" . -}}
{{- template "overview_positions" . -}}
`

	// --- Partials ---

	overviewTitleTemplate = `
{{define "overview_title"}}# Overview on {{ .Date }}

**Total Balance: {{ .TotalBalance }}**
{{end}}`

	overviewWalletsTemplate = `
{{define "overview_wallets"}}
## Wallets

| Wallet | Balance | In {{ .Currency }} |
|:---|---:|---:|
{{- range .Wallets }}
| {{ .Name }} | {{ .Balance }} | {{ .Converted }} |
{{- end }}
{{end}}`

	overviewMonthTemplate = `
{{define "overview_month"}}
## This Month

|  |  |
|---:|---:|
|   Income | {{ .Income.SignedString }} |
| - Expenses | {{ .Expenses }} |
| **= Net** | **{{ .Net.SignedString }}** |
{{end}}`

	overviewBudgetsTemplate = `
{{define "overview_budgets"}}
{{- if .Budgets }}
## Budgets

| Category | Type | Planned | Actual | Limit | Status |
|:---|:---|---:|---:|---:|:---|
{{- range .Budgets }}
| {{ .Category }} | {{ .Type }} | {{ .Planned }} | {{ .Actual }} | {{ if .HasLimit }}{{ .Limit }}{{ else }}-{{ end }} | {{ if .OverLimit }}over limit{{ else }}ok{{ end }} |
{{- end }}
{{- end }}
{{end}}`

	overviewPositionsTemplate = `
{{define "overview_positions"}}
## Positions

|  |  |
|---:|---:|
| I owe | {{ .DebtIOwe }} |
| Owed to me | {{ .DebtOwedToMe }} |
| Crypto (at cost) | {{ .CryptoValue }} |
| Investments | {{ .InvestmentValue }} |
{{end}}`
)
