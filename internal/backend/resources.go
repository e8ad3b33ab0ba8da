package backend

import (
	"errors"
	"net/url"
	"sort"
)

var ErrUnknownResource = errors.New("backend: unknown resource")

// resources maps console resource names to backend collection paths.
var resources = map[string]string{
	"testimonials": "testimonials",
	"teams":        "teams",
	"projects":     "projects",
	"gallery":      "gallery",
	"leads":        "leads",
	"jobs":         "jobs",
	"categories":   "categories",
	"settings":     "settings",
	"services":     "services",
	"blogs":        "blogs",
}

// Resources returns the known resource names in sorted order.
func Resources() []string {
	out := make([]string, 0, len(resources))
	for name := range resources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsResource reports whether name is a resource the console manages.
func IsResource(name string) bool {
	_, ok := resources[name]
	return ok
}

func resourcePath(resource, id string) (string, error) {
	collection, ok := resources[resource]
	if !ok {
		return "", ErrUnknownResource
	}

	path := "/api/" + collection
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	return path, nil
}
