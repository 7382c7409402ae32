package httpexec

import (
	"net/url"
	"sort"
)

// getURLBudget is the documented limit on a fully-rendered SELECT URL
// before the executor switches to POST (spec §4.4).
const getURLBudget = 8 * 1024

// buildURL assembles the request URL from a base and the query's SQL
// plus options: query, database, user, password, compress/decompress,
// and settings (spec §4.4). url.Values.Encode renders the parameters
// sorted by key, whatever order they are set in, so the rendered URL is
// deterministic — useful for the GET budget check and for tests.
func buildURL(base *url.URL, sql string, opts Options) *url.URL {
	u := *base
	q := url.Values{}
	q.Set("query", sql)
	if opts.Database != "" {
		q.Set("database", opts.Database)
	}
	if opts.User != "" {
		q.Set("user", opts.User)
	}
	if opts.Password != "" {
		q.Set("password", opts.Password)
	}
	if opts.Compress {
		q.Set("compress", "1")
	}
	if opts.Decompress {
		q.Set("decompress", "1")
	}

	names := make([]string, 0, len(opts.Settings))
	for name := range opts.Settings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		q.Set(name, opts.Settings[name])
	}

	u.RawQuery = q.Encode()
	return &u
}

// fitsGETBudget reports whether u's rendered form fits the GET URL
// length budget (spec §4.4, §8 invariant implied by the method
// selection rule).
func fitsGETBudget(u *url.URL) bool {
	return len(u.String()) <= getURLBudget
}
