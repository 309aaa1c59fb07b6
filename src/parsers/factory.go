// backend/src/parsers/factory.go
package parsers

import (
	"fmt"
	"strings"
)

// GetProfile returns the extraction profile for a broker.
func GetProfile(broker Broker) Profile {
	switch broker {
	case BrokerRobinhood:
		return robinhoodProfile
	case BrokerTD:
		return tdProfile
	case BrokerGeneric:
		return genericProfile
	}
	return genericProfile
}

// GetParser returns a statement parser for the given source. An empty source or
// "auto" detects the broker from the header row.
func GetParser(source string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", "auto":
		return NewStatementParser(), nil
	}
	broker, err := ParseBroker(source)
	if err != nil {
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
	return NewStatementParserFor(broker), nil
}
