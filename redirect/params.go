package redirect

import (
	"net/url"
	"strings"
)

// Param is a single key/value pair delivered to a redirect target.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of pairs. Unlike url.Values the insertion order is kept when encoding,
// so code, token, id_token and state always reach the client in that order.
type Params []Param

// Add appends a pair.
func (p *Params) Add(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

// AddIfNotEmpty appends a pair only when value is set.
func (p *Params) AddIfNotEmpty(key, value string) {
	if value != "" {
		p.Add(key, value)
	}
}

// Encode returns the pairs in application/x-www-form-urlencoded form.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, kv := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(kv.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv.Value))
	}
	return sb.String()
}

// ParamsFromValues picks the first non-empty value of each key from values, in keys order.
func ParamsFromValues(values url.Values, keys ...string) Params {
	params := make(Params, 0, len(keys))
	for _, key := range keys {
		params.AddIfNotEmpty(key, values.Get(key))
	}
	return params
}
