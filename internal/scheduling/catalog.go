package scheduling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"dentabook/pkg/sanitizer"
)

type Service struct {
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration_minutes"`
	Aliases         []string `json:"aliases,omitempty"`
}

type Catalog interface {
	Lookup(name string) (Service, error)
	Services() []Service
}

var DefaultServices = []Service{
	{Name: "Dental Cleaning", DurationMinutes: 30, Aliases: []string{"تنظيف الأسنان"}},
	{Name: "Root Canal", DurationMinutes: 90, Aliases: []string{"علاج العصب"}},
	{Name: "Teeth Whitening", DurationMinutes: 60, Aliases: []string{"تبييض الأسنان"}},
	{Name: "Filling", DurationMinutes: 45, Aliases: []string{"حشو"}},
	{Name: "Extraction", DurationMinutes: 45, Aliases: []string{"خلع"}},
	{Name: "Consultation", DurationMinutes: 30, Aliases: []string{"استشارة"}},
	{Name: "Checkup", DurationMinutes: 30, Aliases: []string{"فحص"}},
}

// StaticCatalog is a read-only name to duration table. Names and aliases
// match case-insensitively and resolve to the canonical service.
type StaticCatalog struct {
	services []Service
	byKey    map[string]Service
}

func NewStaticCatalog(services []Service) (*StaticCatalog, error) {
	c := &StaticCatalog{byKey: make(map[string]Service)}
	for _, s := range services {
		if s.DurationMinutes <= 0 {
			return nil, fmt.Errorf("service %q: duration must be positive", s.Name)
		}
		for _, name := range append([]string{s.Name}, s.Aliases...) {
			key := catalogKey(name)
			if key == "" {
				return nil, fmt.Errorf("service %q: empty name", s.Name)
			}
			if _, dup := c.byKey[key]; dup {
				return nil, fmt.Errorf("service %q: duplicate name %q", s.Name, name)
			}
			c.byKey[key] = s
		}
		c.services = append(c.services, s)
	}
	sort.SliceStable(c.services, func(i, j int) bool { return c.services[i].Name < c.services[j].Name })
	return c, nil
}

func (c *StaticCatalog) Lookup(name string) (Service, error) {
	s, ok := c.byKey[catalogKey(name)]
	if !ok {
		return Service{}, fmt.Errorf("%w: %q", ErrUnknownService, name)
	}
	return s, nil
}

func (c *StaticCatalog) Services() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

func catalogKey(name string) string {
	return strings.ToLower(sanitizer.TrimAndNormalize(name))
}

// ParseServices reads a catalog written as
// "Root Canal|علاج العصب=90;Filling=45". An empty string yields DefaultServices.
func ParseServices(raw string) ([]Service, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultServices, nil
	}

	var services []Service
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		names, minutes, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("catalog entry %q: missing '='", entry)
		}
		duration, err := strconv.Atoi(strings.TrimSpace(minutes))
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", entry, err)
		}
		parts := sanitizer.NormalizeStringSlice(strings.Split(names, "|"), sanitizer.TrimAndNormalize)
		if len(parts) == 0 {
			return nil, fmt.Errorf("catalog entry %q: missing name", entry)
		}
		services = append(services, Service{Name: parts[0], DurationMinutes: duration, Aliases: parts[1:]})
	}
	return services, nil
}
