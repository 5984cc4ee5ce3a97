package graph

// OperationType classifies a detected workflow operation
type OperationType string

const (
	UITrigger      OperationType = "ui_trigger"
	HTTPCall       OperationType = "http_call"
	HTTPRoute      OperationType = "http_route"
	DBRead         OperationType = "db_read"
	DBWrite        OperationType = "db_write"
	FileRead       OperationType = "file_read"
	FileWrite      OperationType = "file_write"
	MessageSend    OperationType = "message_send"
	MessageReceive OperationType = "message_receive"
	DataTransform  OperationType = "data_transform"
	CacheRead      OperationType = "cache_read"
	CacheWrite     OperationType = "cache_write"
)

// AllTypes lists every operation type the engine can emit
var AllTypes = []OperationType{
	UITrigger, HTTPCall, HTTPRoute,
	DBRead, DBWrite,
	FileRead, FileWrite,
	MessageSend, MessageReceive,
	DataTransform, CacheRead, CacheWrite,
}

var displayNames = map[OperationType]string{
	UITrigger:      "User Action",
	HTTPCall:       "API Call",
	HTTPRoute:      "API Endpoint",
	DBRead:         "Database Read",
	DBWrite:        "Database Write",
	FileRead:       "File Read",
	FileWrite:      "File Write",
	MessageSend:    "Message Send",
	MessageReceive: "Message Receive",
	DataTransform:  "Data Transform",
	CacheRead:      "Cache Read",
	CacheWrite:     "Cache Write",
}

// DisplayName returns a human readable name for the operation type
func (t OperationType) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return string(t)
}

// IsValid reports whether the type belongs to the closed enumeration
func (t OperationType) IsValid() bool {
	_, ok := displayNames[t]
	return ok
}

// CodeLocation points at a single line in a scanned file
type CodeLocation struct {
	FilePath   string `json:"file_path"`
	LineNumber int    `json:"line_number"`
}

// Operation is the ephemeral, per-file output of a detector before
// graph assembly. Line numbers are 1-based.
type Operation struct {
	Type        OperationType
	Name        string
	Description string
	Line        int

	TableName  string
	Query      string
	Endpoint   string
	HTTPMethod string
	QueueName  string
	TargetPath string
	Snippet    string

	Metadata map[string]string
}

// Warning records a non-fatal detection anomaly on a single file
type Warning struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
}

// WorkflowNode is the graph-resident form of an Operation
type WorkflowNode struct {
	ID          string        `json:"id"`
	Type        OperationType `json:"type"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Location    CodeLocation  `json:"location"`

	TableName  string `json:"table_name,omitempty"`
	Query      string `json:"query,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
	HTTPMethod string `json:"http_method,omitempty"`
	QueueName  string `json:"queue_name,omitempty"`
	TargetPath string `json:"target_path,omitempty"`
	Snippet    string `json:"snippet,omitempty"`

	WorkflowID string `json:"workflow_id,omitempty"`
	StepNumber int    `json:"step_number,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// WorkflowEdge is a directed causal link between two nodes. Source
// occurs before target in execution order.
type WorkflowEdge struct {
	Source   string            `json:"source"`
	Target   string            `json:"target"`
	Label    string            `json:"label"`
	EdgeType string            `json:"edge_type"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Edge type values
const (
	EdgeRouteMatch = "route_match"
	EdgeProximity  = "proximity"
)
