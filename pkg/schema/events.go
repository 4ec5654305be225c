package schema

// StructureKind names one of the simulated structures.
type StructureKind string

const (
	StructureArray StructureKind = "array"
	StructureList  StructureKind = "list"
	StructureStack StructureKind = "stack"
	StructureQueue StructureKind = "queue"
	StructureTree  StructureKind = "tree"
)

// StructureKinds lists every simulated structure in a stable order.
var StructureKinds = []StructureKind{
	StructureArray,
	StructureList,
	StructureStack,
	StructureQueue,
	StructureTree,
}

// ParseStructureKind validates a structure name.
func ParseStructureKind(s string) (StructureKind, error) {
	for _, k := range StructureKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", NewErrorf(ErrCodeUnknownStructure, "unknown structure %q", s)
}

// Broadcast channel names. One channel per structure kind plus the
// algorithm channels.
const (
	ChannelArray      = "array-visualization"
	ChannelList       = "list-visualization"
	ChannelStack      = "stack-visualization"
	ChannelQueue      = "queue-visualization"
	ChannelTree       = "tree-visualization"
	ChannelPathfind   = "pathfinding"
	ChannelTraversal  = "traversal"
	ChannelAlgorithms = "algorithm-updates"
)

// Channel returns the broadcast channel of a structure kind.
func (k StructureKind) Channel() string {
	switch k {
	case StructureArray:
		return ChannelArray
	case StructureList:
		return ChannelList
	case StructureStack:
		return ChannelStack
	case StructureQueue:
		return ChannelQueue
	case StructureTree:
		return ChannelTree
	default:
		return ""
	}
}

// Channels lists every broadcast channel.
var Channels = []string{
	ChannelArray,
	ChannelList,
	ChannelStack,
	ChannelQueue,
	ChannelTree,
	ChannelPathfind,
	ChannelTraversal,
	ChannelAlgorithms,
}

// Stream event types.
const (
	EventStep          = "step"
	EventAlgorithmStep = "algorithm_step"
	EventTraversal     = "traversal_step"
	EventCleared       = "cleared"
	EventRouteRequest  = "route_request"
)
