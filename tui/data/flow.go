package data

import "sort"

// FlowGraph is the producer/consumer topology derived from a MonitorData,
// feeding the TUI's Flow view (§4.6).
type FlowGraph struct {
	Topics    []string
	Producers map[string][]string
	Consumers map[string][]string
}

// BuildFlowGraph derives a FlowGraph from md: every topic any module
// writes to gains that module as a producer, every topic any module reads
// from gains that module as a consumer. Topic and per-topic module lists
// are sorted for deterministic rendering.
//
// Scenario: modules "api" (writes "orders"), "processor" (reads "orders",
// writes "notifications"), "notifier" (reads "notifications") yields
// topics ["notifications", "orders"], producers["orders"]=["api"],
// consumers["orders"]=["processor"], producers["notifications"]=["processor"],
// consumers["notifications"]=["notifier"].
func BuildFlowGraph(md MonitorData) FlowGraph {
	producers := map[string][]string{}
	consumers := map[string][]string{}
	topicSet := map[string]struct{}{}

	for _, m := range md.Modules {
		for _, w := range m.Writes {
			topicSet[w.Topic] = struct{}{}
			producers[w.Topic] = append(producers[w.Topic], m.Name)
		}
		for _, r := range m.Reads {
			topicSet[r.Topic] = struct{}{}
			consumers[r.Topic] = append(consumers[r.Topic], m.Name)
		}
	}

	topics := make([]string, 0, len(topicSet))
	for t := range topicSet {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	for _, list := range producers {
		sort.Strings(list)
	}
	for _, list := range consumers {
		sort.Strings(list)
	}

	return FlowGraph{Topics: topics, Producers: producers, Consumers: consumers}
}
