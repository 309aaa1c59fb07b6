// backend/src/parsers/broker.go
package parsers

import (
	"fmt"
	"strings"
)

// Broker identifies a statement export format. The set is closed; every switch over
// Broker must handle all values.
type Broker int

const (
	BrokerGeneric Broker = iota
	BrokerRobinhood
	BrokerTD
)

// String returns the broker id used in metadata and API responses.
func (b Broker) String() string {
	switch b {
	case BrokerRobinhood:
		return "robinhood"
	case BrokerTD:
		return "td"
	case BrokerGeneric:
		return "generic"
	}
	return fmt.Sprintf("Broker(%d)", int(b))
}

// ParseBroker maps a broker id (case-insensitive) to a Broker.
func ParseBroker(s string) (Broker, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "robinhood":
		return BrokerRobinhood, nil
	case "td", "tdameritrade", "td ameritrade":
		return BrokerTD, nil
	case "generic":
		return BrokerGeneric, nil
	default:
		return BrokerGeneric, fmt.Errorf("unknown broker: %q", s)
	}
}

// Field is a canonical input column looked up through a profile's alias list.
type Field int

const (
	FieldTicker Field = iota
	FieldInstrument
	FieldDescription
	FieldTransCode
	FieldSide
	FieldQuantity
	FieldPrice
	FieldDate
)

// Aliases maps a canonical field to the raw header names that may carry it,
// in priority order.
type Aliases map[Field][]string

// Profile is the set of column aliases and derivation rules for one broker format.
type Profile struct {
	Broker  Broker
	Aliases Aliases
	derive  func(fields extracted) tradeDraft
}

// extracted holds the non-empty values found for each aliased field of one row.
type extracted map[Field]string

func (p Profile) extract(row RawRow) extracted {
	fields := make(extracted, len(p.Aliases))
	for field, names := range p.Aliases {
		if value, ok := lookup(row, names); ok {
			fields[field] = value
		}
	}
	return fields
}
