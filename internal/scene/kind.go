package scene

// Kind is one pastry model and how many copies of it to drop.
type Kind struct {
	Name  string  `yaml:"name"`
	Scale float64 `yaml:"scale"`
	Count int     `yaml:"count"`
}

const DefaultCount = 5

func DefaultCatalog() []Kind {
	return []Kind{
		{Name: "Cookie", Scale: 0.2, Count: DefaultCount},
		{Name: "bearCookie", Scale: 0.4, Count: DefaultCount},
		{Name: "cake", Scale: 0.1, Count: DefaultCount},
		{Name: "cupcake", Scale: 0.1, Count: DefaultCount},
		{Name: "mooncake", Scale: 0.3, Count: DefaultCount},
	}
}

// Total is the number of bodies the catalog spawns once every kind loads.
func Total(kinds []Kind) int {
	n := 0
	for _, k := range kinds {
		n += k.Count
	}
	return n
}
