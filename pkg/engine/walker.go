package engine

import "github.com/funilhq/funil/pkg/models"

// nextNodes decides where the walk goes after a node. A non-nil NextNodeIDs
// on the result is an explicit route (branching nodes set it, possibly
// empty); otherwise every outgoing edge is followed.
func nextNodes(flow *models.Flow, nodeID string, result *models.NodeResult) []string {
	if result.NextNodeIDs != nil {
		return result.NextNodeIDs
	}

	edges := flow.EdgesFrom(nodeID)
	targets := make([]string, 0, len(edges))

	for _, edge := range edges {
		targets = append(targets, edge.Target)
	}

	return targets
}

// startNodes picks the walk's entry points: every trigger node, or the first
// declared node when the flow has no trigger.
func startNodes(flow *models.Flow) []string {
	triggers := flow.TriggerNodes()
	if len(triggers) > 0 {
		ids := make([]string, 0, len(triggers))
		for _, node := range triggers {
			ids = append(ids, node.ID)
		}

		return ids
	}

	if len(flow.Nodes) > 0 {
		return []string{flow.Nodes[0].ID}
	}

	return nil
}
