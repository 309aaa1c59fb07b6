// backend/src/parsers/detect.go
package parsers

import "strings"

// detectionRule matches a broker when any header contains one of its signals.
type detectionRule struct {
	broker  Broker
	signals []string
}

// detectionRules are tried in order; the first match wins.
var detectionRules = []detectionRule{
	{broker: BrokerRobinhood, signals: []string{"robinhood"}},
	{broker: BrokerRobinhood, signals: []string{"activity date", "trans code", "instrument"}},
	{broker: BrokerTD, signals: []string{"td", "ameritrade"}},
}

// DetectBroker picks the broker profile for a header row. It never fails:
// headers with no signal fall back to BrokerGeneric.
func DetectBroker(headers []string) Broker {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(h)
	}

	for _, rule := range detectionRules {
		for _, signal := range rule.signals {
			for _, header := range lowered {
				if strings.Contains(header, signal) {
					return rule.broker
				}
			}
		}
	}
	return BrokerGeneric
}
