package wiring

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateWiringDiagram renders the scheduler graph as a mermaid
// flowchart. INJECT and OFFER edges are labeled; ordered-solder edges are
// numbered in delivery order. Schedulers with hyperlinks emit click lines.
func (m *Model) GenerateWiringDiagram() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	// Nodes: registered schedulers plus heartbeat sources referenced by
	// edges.
	seen := make(map[*schedulerCore]bool)
	var nodes []*schedulerCore
	addNode := func(core *schedulerCore) {
		if core == nil || seen[core] {
			return
		}
		seen[core] = true
		nodes = append(nodes, core)
	}
	for _, core := range m.schedulers {
		addNode(core)
	}
	for _, edge := range m.edges {
		addNode(edge.source)
		addNode(edge.target)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].name < nodes[j].name })

	for _, core := range nodes {
		label := core.name
		if core.heartbeat {
			label += "\\n(heartbeat)"
		} else {
			label += fmt.Sprintf("\\n(%s)", core.stype)
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeID(core.name), label))
	}

	orderedIndex := 0
	for _, edge := range m.edges {
		arrow := "-->"
		label := ""
		switch edge.mode {
		case SolderInject:
			label = "INJECT"
		case SolderOffer:
			label = "OFFER"
		}
		if edge.ordered {
			orderedIndex++
			if label != "" {
				label += " "
			}
			label += fmt.Sprintf("ordered #%d", orderedIndex)
		}
		if label != "" {
			sb.WriteString(fmt.Sprintf("    %s %s|%s| %s\n",
				nodeID(edge.source.name), arrow, label, nodeID(edge.target.name)))
		} else {
			sb.WriteString(fmt.Sprintf("    %s %s %s\n",
				nodeID(edge.source.name), arrow, nodeID(edge.target.name)))
		}
	}

	for _, core := range nodes {
		if core.hyperlink != "" {
			sb.WriteString(fmt.Sprintf("    click %s \"%s\"\n", nodeID(core.name), core.hyperlink))
		}
	}

	return sb.String()
}

// nodeID sanitizes a scheduler name into a mermaid node identifier.
func nodeID(name string) string {
	replacer := strings.NewReplacer("-", "_", ".", "_", " ", "_")
	return replacer.Replace(name)
}
