package aggregates

// Community is one detected partition cell. MemberIDs covers every node in
// the cell; communities jointly partition the whole node set.
type Community struct {
	ID              int      `json:"id" msgpack:"id"`
	MemberIDs       []string `json:"memberIds" msgpack:"memberIds"`
	Size            int      `json:"size" msgpack:"size"`
	Percentage      float64  `json:"percentage" msgpack:"percentage"`
	InternalDensity float64  `json:"internalDensity" msgpack:"internalDensity"`
}

// RankedNode is a node reference with the score it was ranked by.
type RankedNode struct {
	NodeID      string  `json:"nodeId" msgpack:"nodeId"`
	DisplayName string  `json:"displayName" msgpack:"displayName"`
	Score       float64 `json:"score" msgpack:"score"`
}

// DegreeDistribution summarizes in/out/total degrees across the graph.
type DegreeDistribution struct {
	MaxIn    int     `json:"maxIn" msgpack:"maxIn"`
	MaxOut   int     `json:"maxOut" msgpack:"maxOut"`
	MaxTotal int     `json:"maxTotal" msgpack:"maxTotal"`
	AvgIn    float64 `json:"avgIn" msgpack:"avgIn"`
	AvgOut   float64 `json:"avgOut" msgpack:"avgOut"`
}

// AnalysisResult is the full set of structural statistics computed for one
// graph snapshot. It is embedded on the graph as its statistics document and
// is the input the insight matcher evaluates conditions against.
type AnalysisResult struct {
	Communities    []Community  `json:"communities" msgpack:"communities"`
	BridgeNodes    []RankedNode `json:"bridgeNodes" msgpack:"bridgeNodes"`
	TopInfluencers []RankedNode `json:"topInfluencers" msgpack:"topInfluencers"`

	Density          float64 `json:"density" msgpack:"density"`
	AverageDegree    float64 `json:"averageDegree" msgpack:"averageDegree"`
	Reciprocity      float64 `json:"reciprocity" msgpack:"reciprocity"`
	EchoChamberScore float64 `json:"echoChamberScore" msgpack:"echoChamberScore"`
	NetworkMaturity  float64 `json:"networkMaturity" msgpack:"networkMaturity"`

	NodeCount  int     `json:"nodeCount" msgpack:"nodeCount"`
	EdgeCount  int     `json:"edgeCount" msgpack:"edgeCount"`
	Modularity float64 `json:"modularity" msgpack:"modularity"`

	DegreeDistribution DegreeDistribution `json:"degreeDistribution" msgpack:"degreeDistribution"`

	// Warning metadata. Never surfaced as hard failures.
	DroppedEdges      int  `json:"droppedEdges" msgpack:"droppedEdges"`
	PageRankConverged bool `json:"pageRankConverged" msgpack:"pageRankConverged"`
}

// LargestCommunity returns the biggest community, or nil when none exist.
// Communities are kept sorted by descending size.
func (r *AnalysisResult) LargestCommunity() *Community {
	if len(r.Communities) == 0 {
		return nil
	}
	return &r.Communities[0]
}
