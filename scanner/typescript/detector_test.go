package typescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/scanner/graph"
)

func opsOfType(ops []graph.Operation, opType graph.OperationType) []graph.Operation {
	var out []graph.Operation
	for _, op := range ops {
		if op.Type == opType {
			out = append(out, op)
		}
	}
	return out
}

func TestRecognizes(t *testing.T) {
	d := New()
	assert.True(t, d.Recognizes("app.ts"))
	assert.True(t, d.Recognizes("App.tsx"))
	assert.True(t, d.Recognizes("util.js"))
	assert.False(t, d.Recognizes("index.html"))
	assert.False(t, d.Recognizes("Service.cs"))
}

func TestDetectFetch(t *testing.T) {
	src := `async function save(payload) {
  const response = await fetch('/api/save', {
    method: 'POST',
    body: JSON.stringify(payload),
  });
  return response.json();
}
`
	ops, _ := New().Detect("api.ts", []byte(src))
	calls := opsOfType(ops, graph.HTTPCall)
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Line)
	assert.Equal(t, "/api/save", calls[0].Endpoint)
	assert.Equal(t, "POST", calls[0].HTTPMethod, "method read from the options window")
	assert.Equal(t, "fetch", calls[0].Metadata["library"])
}

func TestDetectFetchDefaultsToGet(t *testing.T) {
	src := `const users = await fetch('/api/users');`
	ops, _ := New().Detect("api.ts", []byte(src))
	calls := opsOfType(ops, graph.HTTPCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "GET", calls[0].HTTPMethod)
}

func TestDetectAxios(t *testing.T) {
	src := `import axios from 'axios';

export function remove(id) {
  return axios.delete('/api/items/' + id);
}
`
	ops, _ := New().Detect("items.js", []byte(src))
	calls := opsOfType(ops, graph.HTTPCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "DELETE", calls[0].HTTPMethod)
	assert.Equal(t, "axios", calls[0].Metadata["library"])
}

func TestDetectExpressRoutes(t *testing.T) {
	src := `const router = express.Router();

router.get('/api/users/:id', getUser);
router.post('/api/users', createUser);
app.delete('/api/sessions/:token', endSession);
`
	ops, _ := New().Detect("routes.js", []byte(src))
	routes := opsOfType(ops, graph.HTTPRoute)
	require.Len(t, routes, 3)
	assert.Equal(t, "GET", routes[0].HTTPMethod)
	assert.Equal(t, "/api/users/:id", routes[0].Endpoint)
	assert.Equal(t, "POST", routes[1].HTTPMethod)
	assert.Equal(t, "DELETE", routes[2].HTTPMethod)

	assert.Empty(t, opsOfType(ops, graph.HTTPCall), "route declarations are not outbound calls")
}

func TestDetectNestRoutes(t *testing.T) {
	src := `@Controller('orders')
export class OrdersController {
  @Post('submit')
  async submit(@Body() dto: SubmitDto) {
    return this.service.submit(dto);
  }
}
`
	ops, _ := New().Detect("orders.controller.ts", []byte(src))
	routes := opsOfType(ops, graph.HTTPRoute)
	require.Len(t, routes, 1)
	assert.Equal(t, "POST", routes[0].HTTPMethod)
	assert.Equal(t, "submit", routes[0].Endpoint)
}

func TestDetectBrowserStorage(t *testing.T) {
	src := `const token = localStorage.getItem('auth-token');
sessionStorage.setItem('draft', JSON.stringify(draft));
`
	ops, _ := New().Detect("session.ts", []byte(src))

	reads := opsOfType(ops, graph.CacheRead)
	require.Len(t, reads, 1)
	assert.Equal(t, "localStorage:auth-token", reads[0].Name)

	writes := opsOfType(ops, graph.CacheWrite)
	require.Len(t, writes, 1)
	assert.Equal(t, "draft", writes[0].Metadata["key"])
}

func TestDetectFileAndTransform(t *testing.T) {
	src := `const reader = new FileReader();
reader.readAsText(upload);

const totals = rows.reduce((sum, row) => sum + row.total, 0);
return source$.pipe(
  switchMap(id => this.load(id)),
);
`
	ops, _ := New().Detect("import.ts", []byte(src))

	assert.Len(t, opsOfType(ops, graph.FileRead), 2)
	transforms := opsOfType(ops, graph.DataTransform)
	require.NotEmpty(t, transforms)
}

func TestCommentsAreSkipped(t *testing.T) {
	src := `// fetch('/api/should-not-count')
const real = await fetch('/api/real');
`
	ops, _ := New().Detect("api.ts", []byte(src))
	calls := opsOfType(ops, graph.HTTPCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/real", calls[0].Endpoint)
}
