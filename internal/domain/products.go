package domain

import "strings"

// Типы параметров конфигурации
const (
	ConfigTypeSelect = "select"
	ConfigTypeSlider = "slider"
	ConfigTypeNumber = "number"
)

// SelectOption — вариант выбора с коэффициентом цены
type SelectOption struct {
	Label           string  `json:"label"`
	Value           string  `json:"value"`
	PriceMultiplier float64 `json:"priceMultiplier"`
}

// ConfigOption описывает один настраиваемый параметр услуги
type ConfigOption struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"` // select / slider / number
	Options []SelectOption `json:"options,omitempty"`
	Min     *float64       `json:"min,omitempty"`
	Max     *float64       `json:"max,omitempty"`
	Unit    string         `json:"unit,omitempty"`
}

// IsNumeric — числовой параметр (number или slider)
func (c ConfigOption) IsNumeric() bool {
	return c.Type == ConfigTypeNumber || c.Type == ConfigTypeSlider
}

// FindOption ищет вариант по значению
func (c ConfigOption) FindOption(value string) *SelectOption {
	for i := range c.Options {
		if c.Options[i].Value == value {
			return &c.Options[i]
		}
	}
	return nil
}

// Addon — дополнительная опция с фиксированной ценой
type Addon struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Product — услуга из каталога
type Product struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	Description    string         `json:"description"`
	BasePrice      float64        `json:"basePrice"`
	InternalOnly   bool           `json:"internalOnly,omitempty"`
	Configurations []ConfigOption `json:"configurations"`
	Addons         []Addon        `json:"addons"`
}

// FindConfig ищет параметр по имени
func (p *Product) FindConfig(name string) *ConfigOption {
	for i := range p.Configurations {
		if p.Configurations[i].Name == name {
			return &p.Configurations[i]
		}
	}
	return nil
}

// FindAddon ищет допопцию по ID
func (p *Product) FindAddon(id string) *Addon {
	for i := range p.Addons {
		if p.Addons[i].ID == id {
			return &p.Addons[i]
		}
	}
	return nil
}

// FindProduct ищет услугу по ID в слайсе каталога
func FindProduct(products []Product, id string) *Product {
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}

// ProductVisible — internal-only услуги не показываем PUBLIC
func ProductVisible(p Persona, product *Product) bool {
	return !product.InternalOnly || p != PersonaPublic
}

// FilterProducts — фильтр каталога как на витрине.
// При непустом поиске категория игнорируется (глобальный поиск).
func FilterProducts(p Persona, products []Product, search, category string) []Product {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Product, 0, len(products))
	for i := range products {
		pr := &products[i]
		if !ProductVisible(p, pr) {
			continue
		}
		if search != "" {
			if !strings.Contains(strings.ToLower(pr.Name), search) &&
				!strings.Contains(strings.ToLower(pr.Description), search) &&
				!strings.Contains(strings.ToLower(pr.Category), search) {
				continue
			}
		} else if category != "" && pr.Category != category {
			continue
		}
		out = append(out, *pr)
	}
	return out
}

// DefaultCategories — категории витрины
func DefaultCategories() []string {
	return []string{
		"Compute", "Networking", "Storage", "Web", "Mobile",
		"Containers", "Databases", "Analytics", "AI + Machine Learning",
	}
}

func bound(v float64) *float64 { return &v }

// DefaultProducts возвращает стартовый каталог
func DefaultProducts() []Product {
	return []Product{
		{
			ID:          "vm-basic",
			Name:        "Virtual Machines",
			Category:    "Compute",
			Description: "Provision Windows and Linux virtual machines in seconds",
			BasePrice:   50,
			Configurations: []ConfigOption{
				{
					Name: "Operating System",
					Type: ConfigTypeSelect,
					Options: []SelectOption{
						{Label: "Linux", Value: "linux", PriceMultiplier: 1},
						{Label: "Windows", Value: "windows", PriceMultiplier: 1.5},
					},
				},
				{
					Name: "Instance Configuration",
					Type: ConfigTypeSelect,
					Options: []SelectOption{
						{Label: "2 vCPU, 4 GB RAM", Value: "small", PriceMultiplier: 1},
						{Label: "4 vCPU, 8 GB RAM", Value: "medium", PriceMultiplier: 2},
						{Label: "8 vCPU, 16 GB RAM", Value: "large", PriceMultiplier: 4},
					},
				},
			},
			Addons: []Addon{
				{ID: "backup", Name: "Daily Backup", Price: 10, Description: "Automated snapshots"},
				{ID: "monitoring", Name: "Advanced Monitoring", Price: 15, Description: "Detailed health checks"},
			},
		},
		{
			ID:          "db-postgres",
			Name:        "PostgreSQL Database",
			Category:    "Databases",
			Description: "Managed PostgreSQL database instance with high availability",
			BasePrice:   80,
			Configurations: []ConfigOption{
				{
					Name: "Tier",
					Type: ConfigTypeSelect,
					Options: []SelectOption{
						{Label: "General Purpose", Value: "gp", PriceMultiplier: 1},
						{Label: "Memory Optimized", Value: "mo", PriceMultiplier: 1.8},
					},
				},
			},
			Addons: []Addon{
				{ID: "ha", Name: "High Availability", Price: 50, Description: "Multi-region failover"},
			},
		},
		{
			ID:          "storage-blob",
			Name:        "Blob Storage",
			Category:    "Storage",
			Description: "Massively scalable object storage",
			BasePrice:   0.02,
			Configurations: []ConfigOption{
				{Name: "Capacity (GB)", Type: ConfigTypeNumber, Min: bound(1), Max: bound(10000), Unit: "GB"},
			},
			Addons: []Addon{},
		},
		{
			ID:           "adv-gpu",
			Name:         "H100 GPU Cluster",
			Category:     "AI + Machine Learning",
			Description:  "High performance GPU computing for training LLMs",
			BasePrice:    5000,
			InternalOnly: true,
			Configurations: []ConfigOption{
				{Name: "Nodes", Type: ConfigTypeNumber, Min: bound(1), Max: bound(64)},
			},
			Addons: []Addon{
				{ID: "interconnect", Name: "InfiniBand Interconnect", Price: 1000, Description: "Ultra-low latency networking"},
			},
		},
	}
}
