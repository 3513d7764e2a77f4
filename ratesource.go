package moneta

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"sync"

	"github.com/PaesslerAG/jsonpath"
	"golang.org/x/sync/errgroup"
)

// Remote rate feed. The engine only ever consumes a finished RateTable; this
// file is the helper that builds one from a public quote endpoint.

// diskCache implements a simple disk cache for HTTP responses, keyed per
// day so cached quotes expire overnight.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	key := fmt.Sprintf("%s %s %s", Today(), req.Method, req.URL.String())
	key = fmt.Sprintf("moneta-%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(os.TempDir(), key))
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}

// DailyCachedClient returns an HTTP client whose responses expire daily.
func DailyCachedClient() *http.Client {
	return &http.Client{Transport: &diskCache{http.DefaultTransport}}
}

// jwget performs an HTTP GET and unmarshals the JSON response into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// RateSource describes a JSON quote endpoint. The URL pattern receives the
// base and the quoted currency; Path is a jsonpath expression selecting the
// rate in the response.
//
// The default source is the frankfurter.dev public API, whose response for
// GET /v1/latest?base=EUR&symbols=USD looks like:
//
//	{"amount":1.0,"base":"EUR","date":"2025-08-29","rates":{"USD":1.17}}
type RateSource struct {
	URL  string // fmt pattern with two %s verbs: base, symbol
	Path string // jsonpath to the rate value
}

// DefaultRateSource queries frankfurter.dev.
var DefaultRateSource = RateSource{
	URL:  "https://api.frankfurter.dev/v1/latest?base=%s&symbols=%s",
	Path: "$.rates.%s",
}

// FetchRates builds a RateTable for the base currency by querying the source
// for every symbol concurrently. The returned table maps each symbol to
// units of base per one unit of symbol, which is what RateTable expects.
func FetchRates(ctx context.Context, client *http.Client, src RateSource, base string, symbols []string) (*RateTable, error) {
	base = NormalizeCurrency(base)

	var mu sync.Mutex
	rates := make(map[string]float64, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		symbol := NormalizeCurrency(symbol)
		if symbol == base {
			continue
		}
		g.Go(func() error {
			quoted, err := fetchRate(ctx, client, src, base, symbol)
			if err != nil {
				return fmt.Errorf("fetching %s/%s: %w", base, symbol, err)
			}
			// The feed quotes symbol per base; the table wants base per symbol.
			mu.Lock()
			rates[symbol] = 1 / quoted
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewRateTable(base, rates), nil
}

func fetchRate(ctx context.Context, client *http.Client, src RateSource, base, symbol string) (float64, error) {
	addr := fmt.Sprintf(src.URL, base, symbol)
	var jobj any
	if err := jwget(ctx, client, addr, &jobj); err != nil {
		return 0, err
	}
	return extractRate(jobj, fmt.Sprintf(src.Path, symbol))
}

// extractRate pulls a float out of a decoded JSON document at a jsonpath.
func extractRate(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing response: %q %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer, keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("value at %q is not a number: %v", path, jval)
	}
	if val <= 0 {
		return 0, fmt.Errorf("value at %q is not a positive rate: %v", path, val)
	}
	return val, nil
}
