// Package csharp detects workflow operations in C#/.NET sources:
// Entity Framework and raw ADO.NET database access, HttpClient calls,
// ASP.NET route attributes, file I/O and Service Bus or RabbitMQ
// messaging.
package csharp

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flowlens/flowlens/scanner/graph"
	"github.com/flowlens/flowlens/scanner/source"
)

// lookback window for resolving the entity behind an EF call chain
const tableLookback = 5

// lookback window for an endpoint declared shortly before the call
const endpointLookback = 3

var (
	efReadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.Where\s*\(`),
		regexp.MustCompile(`\.Select\s*\(`),
		regexp.MustCompile(`\.FirstOrDefault(Async)?\s*\(`),
		regexp.MustCompile(`\.SingleOrDefault(Async)?\s*\(`),
		regexp.MustCompile(`\.First(Async)?\s*\(`),
		regexp.MustCompile(`\.ToList(Async)?\s*\(`),
		regexp.MustCompile(`\.ToArray(Async)?\s*\(`),
		regexp.MustCompile(`\.Include\s*\(`),
		regexp.MustCompile(`\.Find(Async)?\s*\(`),
		regexp.MustCompile(`\.Any(Async)?\s*\(`),
		regexp.MustCompile(`\.Count(Async)?\s*\(`),
		regexp.MustCompile(`\.FromSql(Raw|Interpolated)?`),
	}
	efWritePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.Add(Range)?(Async)?\s*\(`),
		regexp.MustCompile(`\.Update(Range)?\s*\(`),
		regexp.MustCompile(`\.Remove(Range)?\s*\(`),
		regexp.MustCompile(`\.SaveChanges(Async)?\s*\(`),
		regexp.MustCompile(`\.ExecuteDelete(Async)?\s*\(`),
		regexp.MustCompile(`\.ExecuteUpdate(Async)?\s*\(`),
	}
	sqlReadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`new\s+SqlCommand\s*\(`),
		regexp.MustCompile(`\.ExecuteReader(Async)?\s*\(`),
		regexp.MustCompile(`\.ExecuteScalar(Async)?\s*\(`),
	}
	sqlWritePattern = regexp.MustCompile(`\.ExecuteNonQuery(Async)?\s*\(`)

	// _context.Orders, _db.Orders, DbSet<Order>
	tablePattern = regexp.MustCompile(`DbSet<(\w+)>|_context\.(\w+)|_db\.(\w+)|\bcontext\.(\w+)\b`)
	dbSetDecl    = regexp.MustCompile(`public\s+(?:virtual\s+)?DbSet<(\w+)>\s+(\w+)`)

	httpCallPattern = regexp.MustCompile(`\.(Get|Post|Put|Delete|Patch|Send)(?:As(?:Json)?Async|StringAsync|Async|FromJsonAsync)\s*[<(]`)
	stringLiteral   = regexp.MustCompile(`"([^"]+)"`)

	routeAttrPattern = regexp.MustCompile(`\[Http(Get|Post|Put|Delete|Patch)\s*(?:\(\s*"([^"]*)"\s*\))?\]`)
	routePrefixAttr  = regexp.MustCompile(`\[Route\s*\(\s*"([^"]*)"\s*\)\]`)
	actionMethod     = regexp.MustCompile(`(?:public|protected|internal)\s+(?:async\s+)?[\w<>\[\],\s]+?\s(\w+)\s*\(`)

	fileReadPatterns = []*regexp.Regexp{
		regexp.MustCompile(`File\.(ReadAllText|ReadAllLines|ReadAllBytes|ReadLines|OpenRead|OpenText)(Async)?\s*\(`),
		regexp.MustCompile(`new\s+StreamReader\s*\(`),
	}
	fileWritePatterns = []*regexp.Regexp{
		regexp.MustCompile(`File\.(WriteAllText|WriteAllLines|WriteAllBytes|AppendAllText|AppendAllLines|OpenWrite|Create|Copy|Move|Delete)(Async)?\s*\(`),
		regexp.MustCompile(`new\s+StreamWriter\s*\(`),
	}

	messageSendPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.SendMessage(s)?Async\s*\(`),
		regexp.MustCompile(`ServiceBusSender`),
		regexp.MustCompile(`\.BasicPublish\s*\(`),
		regexp.MustCompile(`\.Publish(Async)?\s*\(`),
	}
	messageReceivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`ServiceBusProcessor|ServiceBusReceiver`),
		regexp.MustCompile(`\.BasicConsume\s*\(`),
		regexp.MustCompile(`ProcessMessageAsync`),
		regexp.MustCompile(`\.ReceiveMessage(s)?Async\s*\(`),
	}
	queueNamePattern = regexp.MustCompile(`Create(Sender|Receiver|Processor)\s*\(\s*"([^"]+)"|queue:\s*"([^"]+)"`)
)

// Detector scans C# sources
type Detector struct{}

// New creates a C# detector
func New() *Detector {
	return &Detector{}
}

func (d *Detector) Name() string {
	return "csharp"
}

func (d *Detector) Recognizes(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".cs" || ext == ".cshtml"
}

func (d *Detector) Detect(path string, content []byte) ([]graph.Operation, []graph.Warning) {
	lines := source.Lines(content)
	var ops []graph.Operation
	var warnings []graph.Warning

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		ops = append(ops, d.detectRoutes(lines, i, path, &warnings)...)
		ops = append(ops, d.detectHTTPCalls(lines, i)...)
		ops = append(ops, d.detectDatabase(lines, i)...)
		ops = append(ops, d.detectFileIO(lines, i)...)
		ops = append(ops, d.detectMessaging(lines, i)...)
	}
	return ops, warnings
}

// detectRoutes handles ASP.NET attribute routing declared on action
// methods, [HttpPost("/api/orders")] or [HttpGet] next to a [Route]
// attribute
func (d *Detector) detectRoutes(lines []string, i int, path string, warnings *[]graph.Warning) []graph.Operation {
	m := routeAttrPattern.FindStringSubmatch(lines[i])
	if m == nil {
		return nil
	}
	method := strings.ToUpper(m[1])
	route := m[2]
	if route == "" {
		// bare [HttpGet]: the path lives on a nearby [Route] attribute
		window := source.Lookback(lines, i, endpointLookback) + "\n" + source.Lookahead(lines, i, 1)
		if rm := routePrefixAttr.FindStringSubmatch(window); rm != nil {
			route = rm[1]
		}
	}
	if route == "" {
		*warnings = append(*warnings, graph.Warning{
			FilePath: path,
			Line:     i + 1,
			Message:  fmt.Sprintf("Http%s attribute without a literal route path", m[1]),
		})
		return nil
	}
	handler := ""
	if hm := actionMethod.FindStringSubmatch(source.Lookahead(lines, i, 4)); hm != nil {
		handler = hm[1]
	}
	name := method + " " + route
	if handler != "" {
		name = handler
	}
	return []graph.Operation{{
		Type:        graph.HTTPRoute,
		Name:        name,
		Description: fmt.Sprintf("Handles %s %s", method, route),
		Line:        i + 1,
		Endpoint:    route,
		HTTPMethod:  method,
		Snippet:     source.Snippet(lines, i),
		Metadata:    map[string]string{"handler": handler, "framework": "aspnet"},
	}}
}

func (d *Detector) detectHTTPCalls(lines []string, i int) []graph.Operation {
	m := httpCallPattern.FindStringSubmatch(lines[i])
	if m == nil {
		return nil
	}
	method := strings.ToUpper(m[1])
	if method == "SEND" {
		method = ""
	}
	endpoint := extractEndpoint(lines, i)
	name := "HTTP call"
	if endpoint != "" {
		name = strings.TrimSpace(method + " " + endpoint)
	}
	return []graph.Operation{{
		Type:        graph.HTTPCall,
		Name:        name,
		Description: "Outbound HTTP request via HttpClient",
		Line:        i + 1,
		Endpoint:    endpoint,
		HTTPMethod:  method,
		Snippet:     source.Snippet(lines, i),
		Metadata:    map[string]string{"library": "HttpClient"},
	}}
}

// extractEndpoint looks for a URL-ish string literal on the matching
// line, then up to endpointLookback lines before it
func extractEndpoint(lines []string, i int) string {
	for _, candidate := range stringLiteral.FindAllStringSubmatch(lines[i], -1) {
		if looksLikeURL(candidate[1]) {
			return candidate[1]
		}
	}
	for _, candidate := range stringLiteral.FindAllStringSubmatch(source.Lookback(lines, i, endpointLookback), -1) {
		if looksLikeURL(candidate[1]) {
			return candidate[1]
		}
	}
	return ""
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (d *Detector) detectDatabase(lines []string, i int) []graph.Operation {
	var ops []graph.Operation
	line := lines[i]

	if dm := dbSetDecl.FindStringSubmatch(line); dm != nil {
		// schema declaration, not an access, skip
		return nil
	}

	read := matchAny(efReadPatterns, line)
	write := matchAny(efWritePatterns, line)
	table := extractTable(lines, i)

	if read != "" {
		ops = append(ops, dbOperation(graph.DBRead, read, table, lines, i))
	}
	if write != "" {
		ops = append(ops, dbOperation(graph.DBWrite, write, table, lines, i))
	}
	if read == "" && write == "" {
		if raw := matchAny(sqlReadPatterns, line); raw != "" {
			op := dbOperation(graph.DBRead, raw, table, lines, i)
			op.Query = extractQuery(lines, i)
			op.Metadata["access"] = "sql"
			ops = append(ops, op)
		} else if sqlWritePattern.MatchString(line) {
			op := dbOperation(graph.DBWrite, "ExecuteNonQuery", table, lines, i)
			op.Query = extractQuery(lines, i)
			op.Metadata["access"] = "sql"
			ops = append(ops, op)
		}
	}
	return ops
}

func dbOperation(opType graph.OperationType, matched, table string, lines []string, i int) graph.Operation {
	verb := strings.Trim(strings.TrimLeft(matched, "."), "(. \t")
	name := verb
	if table != "" {
		name = table + "." + verb
	}
	kind := "Read"
	if opType == graph.DBWrite {
		kind = "Write"
	}
	desc := fmt.Sprintf("%s access via Entity Framework", kind)
	return graph.Operation{
		Type:        opType,
		Name:        name,
		Description: desc,
		Line:        i + 1,
		TableName:   table,
		Snippet:     source.Snippet(lines, i),
		Metadata:    map[string]string{"access": "ef"},
	}
}

// extractTable resolves the entity set an EF chain operates on,
// checking the line itself then a short lookback window
func extractTable(lines []string, i int) string {
	if m := tablePattern.FindStringSubmatch(lines[i]); m != nil {
		if name := source.FirstGroup(m); !isContextMember(name) {
			return name
		}
	}
	window := source.Lookback(lines, i, tableLookback)
	matches := tablePattern.FindAllStringSubmatch(window, -1)
	for j := len(matches) - 1; j >= 0; j-- {
		if name := source.FirstGroup(matches[j]); !isContextMember(name) {
			return name
		}
	}
	return ""
}

// isContextMember filters context methods that look like entity sets
func isContextMember(name string) bool {
	switch name {
	case "SaveChanges", "SaveChangesAsync", "Database", "Entry", "Set", "":
		return true
	}
	return false
}

func extractQuery(lines []string, i int) string {
	window := source.Lookback(lines, i, tableLookback)
	for _, candidate := range stringLiteral.FindAllStringSubmatch(window, -1) {
		upper := strings.ToUpper(candidate[1])
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE "} {
			if strings.HasPrefix(upper, kw) {
				return source.Truncate(candidate[1], 120)
			}
		}
	}
	return ""
}

func (d *Detector) detectFileIO(lines []string, i int) []graph.Operation {
	var ops []graph.Operation
	line := lines[i]
	if matched := matchAny(fileReadPatterns, line); matched != "" {
		ops = append(ops, fileOperation(graph.FileRead, matched, lines, i))
	}
	if matched := matchAny(fileWritePatterns, line); matched != "" {
		ops = append(ops, fileOperation(graph.FileWrite, matched, lines, i))
	}
	return ops
}

func fileOperation(opType graph.OperationType, matched string, lines []string, i int) graph.Operation {
	target := ""
	if m := stringLiteral.FindStringSubmatch(lines[i]); m != nil {
		target = m[1]
	}
	name := source.Truncate(strings.TrimRight(matched, "( \t"), 60)
	kind := "read"
	if opType == graph.FileWrite {
		kind = "write"
	}
	return graph.Operation{
		Type:        opType,
		Name:        name,
		Description: "File " + kind,
		Line:        i + 1,
		TargetPath:  target,
		Snippet:     source.Snippet(lines, i),
	}
}

func (d *Detector) detectMessaging(lines []string, i int) []graph.Operation {
	var ops []graph.Operation
	line := lines[i]
	queue := extractQueueName(source.Lookback(lines, i, tableLookback))

	if matched := matchAny(messageSendPatterns, line); matched != "" {
		ops = append(ops, messageOperation(graph.MessageSend, queue, lines, i))
	}
	if matched := matchAny(messageReceivePatterns, line); matched != "" {
		ops = append(ops, messageOperation(graph.MessageReceive, queue, lines, i))
	}
	return ops
}

func messageOperation(opType graph.OperationType, queue string, lines []string, i int) graph.Operation {
	verb := "Send"
	desc := "Publishes a message"
	if opType == graph.MessageReceive {
		verb = "Receive"
		desc = "Consumes a message"
	}
	name := verb + " message"
	if queue != "" {
		name = verb + " " + queue
	}
	return graph.Operation{
		Type:        opType,
		Name:        name,
		Description: desc,
		Line:        i + 1,
		QueueName:   queue,
		Snippet:     source.Snippet(lines, i),
	}
}

func extractQueueName(window string) string {
	if m := queueNamePattern.FindStringSubmatch(window); m != nil {
		for _, group := range m[2:] {
			if group != "" {
				return group
			}
		}
	}
	return ""
}

func matchAny(patterns []*regexp.Regexp, line string) string {
	for _, p := range patterns {
		if m := p.FindString(line); m != "" {
			return m
		}
	}
	return ""
}
