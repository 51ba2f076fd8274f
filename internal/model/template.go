package model

import (
	"time"

	"github.com/google/uuid"
)

// JobTemplate is a reusable job configuration: items, offcuts and settings,
// never results.
type JobTemplate struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
	Items       []Item        `json:"items"`
	Offcuts     []OffcutPlate `json:"offcuts"`
	Settings    Settings      `json:"settings"`
}

func NewJobTemplate(name, description string, items []Item, offcuts []OffcutPlate, settings Settings) JobTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return JobTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       copyItems(items),
		Offcuts:     copyOffcuts(offcuts),
		Settings:    settings,
	}
}

// ToJob creates a new Job from this template. Items and offcuts get fresh
// IDs so they are independent of the template.
func (t JobTemplate) ToJob(jobName string) Job {
	items := make([]Item, len(t.Items))
	for i, it := range t.Items {
		items[i] = NewItem(it.Name, it.Width, it.Height, it.Quantity)
		items[i].Color = it.Color
	}

	offcuts := make([]OffcutPlate, len(t.Offcuts))
	for i, o := range t.Offcuts {
		offcuts[i] = NewOffcutPlate(o.Name, o.Width, o.Height, o.Quantity)
		offcuts[i].Color = o.Color
	}

	return Job{
		Name:     jobName,
		Items:    items,
		Offcuts:  offcuts,
		Settings: t.Settings,
	}
}

// TemplateStore holds a collection of job templates.
type TemplateStore struct {
	Templates []JobTemplate `json:"templates"`
}

func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []JobTemplate{},
	}
}

// DefaultTemplates returns the built-in starter templates.
func DefaultTemplates() TemplateStore {
	settings := DefaultSettings()
	mk := func(name string, w, h float64, qty, color int) Item {
		it := NewItem(name, w, h, qty)
		it.Color = PaletteColor(color)
		return it
	}
	return TemplateStore{
		Templates: []JobTemplate{
			NewJobTemplate("Basic", "Mixed table tops and side panels", []Item{
				mk("Top A", 600, 400, 5, 0),
				mk("Top B", 800, 300, 3, 1),
				mk("Side panel", 450, 350, 8, 2),
			}, nil, settings),
			NewJobTemplate("Small items", "Many small pieces", []Item{
				mk("Small A", 200, 150, 10, 3),
				mk("Small B", 250, 180, 8, 4),
				mk("Small C", 180, 200, 6, 5),
			}, nil, settings),
			NewJobTemplate("Large items", "Few large pieces", []Item{
				mk("Large top", 1200, 600, 2, 6),
				mk("Large side", 900, 450, 3, 7),
				mk("Shelf", 800, 350, 4, 8),
			}, nil, settings),
		},
	}
}

func (ts *TemplateStore) Add(t JobTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *JobTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *JobTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

func copyItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	cp := make([]Item, len(items))
	copy(cp, items)
	return cp
}

func copyOffcuts(offcuts []OffcutPlate) []OffcutPlate {
	if offcuts == nil {
		return []OffcutPlate{}
	}
	cp := make([]OffcutPlate, len(offcuts))
	copy(cp, offcuts)
	return cp
}
