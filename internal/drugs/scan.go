package drugs

import (
	"encoding/json"
	"regexp"
	"strings"
)

var drugPathPattern = regexp.MustCompile(`/drug/([^/?#]+)`)

// ResolveScan maps a decoded QR payload to a catalog entry. Accepted forms,
// tried in order: a JSON object carrying a drugId, a URL containing a
// /drug/<id> path, or an exact (case-insensitive) name or generic name.
func (c *Catalog) ResolveScan(payload string) (Drug, bool) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Drug{}, false
	}

	var parsed struct {
		DrugID string `json:"drugId"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err == nil && parsed.DrugID != "" {
		return c.ByID(parsed.DrugID)
	}

	if m := drugPathPattern.FindStringSubmatch(payload); m != nil {
		return c.ByID(m[1])
	}

	for _, d := range c.drugs {
		if strings.EqualFold(d.Name, payload) || strings.EqualFold(d.GenericName, payload) {
			return d, true
		}
	}
	return Drug{}, false
}
