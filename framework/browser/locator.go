package browser

import (
	"fmt"
	"strings"
)

// Strategy is how a Locator's value is interpreted.
type Strategy int

const (
	StrategyName Strategy = iota
	StrategyClassName
	StrategyCSSSelector
)

// Locator identifies an element on the page.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ByName finds elements by their name attribute.
func ByName(name string) Locator { return Locator{StrategyName, name} }

// ByClassName finds elements that have the given class.
func ByClassName(class string) Locator { return Locator{StrategyClassName, class} }

// ByCSSSelector finds elements matching a CSS selector.
func ByCSSSelector(selector string) Locator { return Locator{StrategyCSSSelector, selector} }

// CSSSelector returns an equivalent CSS selector, for backends that only understand CSS.
func (l Locator) CSSSelector() string {
	switch l.Strategy {
	case StrategyName:
		return fmt.Sprintf(`[name="%s"]`, cssEscapeString(l.Value))
	case StrategyClassName:
		return "." + cssEscapeIdent(l.Value)
	default:
		return l.Value
	}
}

func (l Locator) String() string {
	switch l.Strategy {
	case StrategyName:
		return fmt.Sprintf("name=%q", l.Value)
	case StrategyClassName:
		return fmt.Sprintf("class=%q", l.Value)
	default:
		return fmt.Sprintf("css=%q", l.Value)
	}
}

func cssEscapeString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func cssEscapeIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == '_' || r >= 0x80,
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				fmt.Fprintf(&b, `\%x `, r)
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
