package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
	Company         int    `json:"company,omitempty"` // 1-based slot; 0 = spectator
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	Company         int         `json:"company,omitempty"`
	WorldParams     WorldParams `json:"world_params"`
	Catalogs        Digests     `json:"catalogs"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	SizeX      int   `json:"size_x"`
	SizeY      int   `json:"size_y"`
	Seed       int64 `json:"seed"`
	HardEdges  bool  `json:"hard_edges"`
}

type Digests struct {
	ObjectsDigest string `json:"objects_digest"`
	TuningDigest  string `json:"tuning_digest,omitempty"`
}

// COMMAND (client -> server). One command per message; the world applies
// pending commands at the next tick boundary in arrival order.
const (
	CmdBuildObject = "BUILD_OBJECT"
	CmdClearObject = "CLEAR_OBJECT"
	CmdQueryTile   = "QUERY_TILE"
)

type CommandMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Cmd             string `json:"cmd"`
	Kind            string `json:"kind,omitempty"` // BUILD_OBJECT only
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Estimate        bool   `json:"estimate,omitempty"`
	Bulldozer       bool   `json:"bulldozer,omitempty"`
	Town            string `json:"town,omitempty"` // optional owner town override
}

// RESULT (server -> client), one per COMMAND.
type ResultMsg struct {
	Type    string   `json:"type"`
	Tick    uint64   `json:"t"`
	Ref     string   `json:"ref"`
	OK      bool     `json:"ok"`
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message,omitempty"`
	Cost    int64    `json:"cost,omitempty"`
	Company int      `json:"company,omitempty"`
	Tile    *TileRef `json:"tile,omitempty"`
}

type TileRef struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// EVENT (server -> client): unsolicited notifications (HQ relocated,
// object generated, company view requested by a click, ...).
type Event map[string]any
