package payment

import (
	"strings"

	"github.com/nexpay/payhook/app/models"
)

// ItemType classifies a catalog entry as a one-time purchase or a recurring
// subscription.
type ItemType string

const (
	ItemTypeOneTime      ItemType = models.ItemTypeOneTime
	ItemTypeSubscription ItemType = models.ItemTypeSubscription
	ItemTypeUnknown      ItemType = models.ItemTypeUnknown
)

// ParseItemType maps a request/config value to an ItemType. Unrecognized
// values classify as unknown rather than erroring; callers decide whether
// unknown is fatal.
func ParseItemType(s string) ItemType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ItemTypeOneTime):
		return ItemTypeOneTime
	case string(ItemTypeSubscription):
		return ItemTypeSubscription
	default:
		return ItemTypeUnknown
	}
}

// Category is the provider-independent item category items are grouped under
// in the catalog (deployment-defined, e.g. "credits", "premium").
type Category string
