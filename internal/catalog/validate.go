package catalog

import (
	"errors"
	"fmt"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

var ErrInvalidCustomization = errors.New("invalid customization")

// ResolveSelections validates the submitted customizations against the
// product's options and returns them with authoritative price modifiers.
// Client-supplied modifiers are ignored; pricing comes from the catalog.
func ResolveSelections(options []ProductOption, selections []domain.Customization) ([]domain.Customization, error) {
	optionsByID := make(map[string]ProductOption, len(options))
	for _, opt := range options {
		optionsByID[opt.ID] = opt
	}

	seen := make(map[string]struct{}, len(selections))
	resolved := make([]domain.Customization, 0, len(selections))
	for _, sel := range selections {
		opt, ok := optionsByID[sel.OptionID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown option %q", ErrInvalidCustomization, sel.OptionID)
		}
		if _, dup := seen[sel.OptionID]; dup {
			return nil, fmt.Errorf("%w: option %q selected twice", ErrInvalidCustomization, sel.OptionID)
		}
		seen[sel.OptionID] = struct{}{}

		if sel.CustomValue != "" && !opt.AllowCustomValue {
			return nil, fmt.Errorf("%w: option %q does not accept a custom value", ErrInvalidCustomization, sel.OptionID)
		}

		choice, ok := findChoice(opt, sel.ChoiceID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown choice %q for option %q", ErrInvalidCustomization, sel.ChoiceID, sel.OptionID)
		}

		resolved = append(resolved, domain.Customization{
			OptionID:      sel.OptionID,
			ChoiceID:      sel.ChoiceID,
			CustomValue:   sel.CustomValue,
			PriceModifier: choice.PriceModifier,
		})
	}

	for _, opt := range options {
		if !opt.Required {
			continue
		}
		if _, ok := seen[opt.ID]; !ok {
			return nil, fmt.Errorf("%w: required option %q missing", ErrInvalidCustomization, opt.ID)
		}
	}

	return resolved, nil
}

func findChoice(opt ProductOption, choiceID string) (OptionChoice, bool) {
	for _, c := range opt.Choices {
		if c.ID == choiceID {
			return c, true
		}
	}
	return OptionChoice{}, false
}
