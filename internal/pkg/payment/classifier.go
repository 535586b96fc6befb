package payment

import "strings"

// Classifier decides whether an item/subscription identifier denotes a
// one-time purchase or a recurring subscription by consulting the catalog.
type Classifier struct {
	store Store
}

// NewClassifier creates a classifier over the given catalog store.
func NewClassifier(store Store) *Classifier {
	return &Classifier{store: store}
}

// Classify returns the purchase type and category the catalog records for
// name. An empty or unrecognized name classifies as unknown; callers must
// treat unknown as a failure, never a guess.
func (c *Classifier) Classify(name string) (ItemType, Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ItemTypeUnknown, "", nil
	}
	item, err := c.store.HasItem(name)
	if err != nil {
		return ItemTypeUnknown, "", err
	}
	if item == nil {
		return ItemTypeUnknown, "", nil
	}
	return ParseItemType(item.ItemType), Category(item.ItemCategory), nil
}
