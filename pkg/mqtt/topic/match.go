package topic

import "strings"

// Match reports whether topic matches filter. The filter may contain the
// MQTT wildcards "+" and "#" and a "$share/<group>/" prefix.
func Match(filter, topic string) bool {
	filter = stripShare(filter)
	if filter == topic {
		return true
	}

	if !strings.Contains(filter, Wildcard) && !strings.Contains(filter, MultiWildcard) {
		return false
	}

	filterParts := strings.Split(filter, Separator)
	topicParts := strings.Split(topic, Separator)

	for i, part := range filterParts {
		if part == MultiWildcard {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if part != Wildcard && part != topicParts[i] {
			return false
		}
	}

	return len(filterParts) == len(topicParts)
}

// stripShare removes the "$share/<group>/" prefix of shared subscriptions.
func stripShare(filter string) string {
	if strings.HasPrefix(filter, "$share/") {
		parts := strings.SplitN(filter, Separator, 3)
		if len(parts) == 3 {
			return parts[2]
		}
	}
	return filter
}
