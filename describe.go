package settings

// ItemDescriptor is the JSON-serialisable description of one declared item,
// suitable for settings UIs and diagnostics. Secret values are masked.
type ItemDescriptor struct {
	Group       string `json:"group"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	Secret      bool   `json:"secret"`
	Description string `json:"description,omitempty"`
}

// Describe returns descriptors for every item in the given groups, in group
// order then declaration order.
func Describe(groups ...*Group) []ItemDescriptor {
	var out []ItemDescriptor
	for _, group := range groups {
		if group == nil {
			continue
		}
		out = append(out, group.Describe()...)
	}
	if out == nil {
		out = []ItemDescriptor{}
	}
	return out
}

// Describe returns descriptors for the group's items in declaration order.
func (g *Group) Describe() []ItemDescriptor {
	items := g.Items()
	out := make([]ItemDescriptor, 0, len(items))
	for _, item := range items {
		out = append(out, ItemDescriptor{
			Group:       g.name,
			Name:        item.Name(),
			Key:         item.Key(),
			Type:        item.TypeName(),
			Value:       item.Display(),
			Secret:      item.Secret(),
			Description: item.Description(),
		})
	}
	return out
}
