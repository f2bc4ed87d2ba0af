package dictionary

import "strings"

// Category is one of a fixed set of topic tags.
type Category string

const (
	Category5G6G        Category = "5G/6G Technologies"
	CategoryCoreNetwork Category = "Core Network"
	CategoryRAN         Category = "RAN Components"
	CategoryModulation  Category = "Modulation"
	CategoryMIMO        Category = "MIMO Technologies"
	CategoryServices    Category = "Service Categories"
	CategoryPerformance Category = "Performance Metrics"
	CategoryRadio       Category = "Radio Technologies"
	CategoryAIML        Category = "AI/ML"
	CategorySecurity    Category = "Security"
	CategoryEmerging    Category = "Emerging Technologies"
	CategoryStandards   Category = "Standards Organizations"
	CategoryIoT         Category = "IoT Technologies"
	CategoryProtocols   Category = "Network Protocols"
	CategoryGeneral     Category = "General"
)

type categoryInfo struct {
	category Category
	triggers []string
}

// Declaration order is the canonical listing order.
var categoryTable = []categoryInfo{
	{Category5G6G, []string{"network", "cellular", "5g", "6g"}},
	{CategoryCoreNetwork, []string{"core"}},
	{CategoryRAN, []string{"fronthaul", "disaggregat", "o-ran", "oran"}},
	{CategoryModulation, []string{"modulation", "modulat", "waveform"}},
	{CategoryMIMO, []string{"mimo", "antenna", "beam"}},
	{CategoryServices, []string{"service", "vehicle", "vehicular"}},
	{CategoryPerformance, []string{"performance", "throughput", "latency", "signal"}},
	{CategoryRadio, []string{"radio", "spectrum", "satellite"}},
	{CategoryAIML, []string{"intelligen", "learning", "automation"}},
	{CategorySecurity, []string{"security", "secure", "encrypt", "authenticat"}},
	{CategoryEmerging, []string{"quantum", "blockchain", "emerging"}},
	{CategoryStandards, []string{"standard", "specification"}},
	{CategoryIoT, []string{"iot", "sensor", "device"}},
	{CategoryProtocols, []string{"protocol", "internet", "web"}},
	{CategoryGeneral, nil},
}

var categoryByFold = func() map[string]Category {
	m := make(map[string]Category, len(categoryTable))
	for _, info := range categoryTable {
		m[strings.ToLower(string(info.category))] = info.category
	}
	return m
}()

// Categories lists every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryTable))
	for i, info := range categoryTable {
		out[i] = info.category
	}
	return out
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryByFold[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Valid reports whether c belongs to the fixed set.
func (c Category) Valid() bool {
	got, ok := categoryByFold[strings.ToLower(string(c))]
	return ok && got == c
}

// Triggers returns the lowercase context words that point at c.
func (c Category) Triggers() []string {
	for _, info := range categoryTable {
		if info.category == c {
			return info.triggers
		}
	}
	return nil
}

func (c Category) String() string {
	return string(c)
}
