package booking

import (
	"regexp"
	"strconv"
	"strings"

	"bikeserve/models"
)

var leadingNumberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParsePrice reads the leading decimal of a price string. Missing or unparsable prices are 0.
func ParsePrice(p models.FlexString) float64 {
	m := leadingNumberRe.FindString(strings.TrimSpace(string(p)))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// toggleItem adds item when absent and removes it when present, keeping selection order.
func toggleItem(items []models.ServiceItem, item models.ServiceItem) ([]models.ServiceItem, bool) {
	for i, it := range items {
		if it.ID == item.ID {
			return append(items[:i:i], items[i+1:]...), false
		}
	}
	return append(items, item), true
}

func containsItem(items []models.ServiceItem, id string) bool {
	for _, it := range items {
		if string(it.ID) == id {
			return true
		}
	}
	return false
}

// ToggleService flips a service in or out of the draft. It reports whether the item is now selected.
func (d *Draft) ToggleService(item models.ServiceItem) bool {
	var selected bool
	d.Services, selected = toggleItem(d.Services, item)
	return selected
}

// ToggleAddOn flips an add-on in or out of the draft.
func (d *Draft) ToggleAddOn(item models.ServiceItem) bool {
	var selected bool
	d.AddOns, selected = toggleItem(d.AddOns, item)
	return selected
}

// SelectedItems is the union of services and add-ons, services first.
func (d *Draft) SelectedItems() []models.ServiceItem {
	out := make([]models.ServiceItem, 0, len(d.Services)+len(d.AddOns))
	out = append(out, d.Services...)
	return append(out, d.AddOns...)
}

// SelectedIDs lists the ids of SelectedItems.
func (d *Draft) SelectedIDs() []string {
	items := d.SelectedItems()
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = string(it.ID)
	}
	return ids
}

// Total is recomputed from the current selection every time.
func (d *Draft) Total() float64 {
	var total float64
	for _, it := range d.SelectedItems() {
		total += ParsePrice(it.Price)
	}
	return total
}
