package react

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/scanner/graph"
)

func TestRecognizes(t *testing.T) {
	d := New()
	assert.True(t, d.Recognizes("App.jsx"))
	assert.True(t, d.Recognizes("panel.tsx"))
	assert.False(t, d.Recognizes("util.ts"))
	assert.False(t, d.Recognizes("util.js"))
}

func TestDetectEventHandlers(t *testing.T) {
	src := `export function OrderForm() {
  return (
    <form onSubmit={handleSubmit}>
      <input onChange={e => setName(e.target.value)} />
      <button onClick={submitOrder}>Submit</button>
    </form>
  );
}
`
	ops, _ := New().Detect("OrderForm.jsx", []byte(src))
	require.Len(t, ops, 3)

	for _, op := range ops {
		assert.Equal(t, graph.UITrigger, op.Type)
		assert.Equal(t, "OrderForm", op.Metadata["component"])
	}
	assert.Equal(t, "submit", ops[0].Metadata["event"])
	assert.Equal(t, "handleSubmit", ops[0].Metadata["handler"])
	assert.Equal(t, 3, ops[0].Line)
	assert.Equal(t, "onClick:submitOrder", ops[2].Name)
	assert.Equal(t, 5, ops[2].Line)
}

func TestComponentTracksLatestDeclaration(t *testing.T) {
	src := `const Header = () => <div onClick={toggle}>menu</div>;

class Footer extends React.Component {
  render() {
    return <a onClick={this.scrollTop}>top</a>;
  }
}
`
	ops, _ := New().Detect("layout.tsx", []byte(src))
	require.Len(t, ops, 2)
	assert.Equal(t, "Header", ops[0].Metadata["component"])
	assert.Equal(t, "Footer", ops[1].Metadata["component"])
}

func TestDetectUseEffect(t *testing.T) {
	src := `export function Dashboard() {
  useEffect(() => {
    refresh();
  }, []);
  return <main />;
}
`
	ops, _ := New().Detect("Dashboard.tsx", []byte(src))
	require.Len(t, ops, 1)
	assert.Equal(t, graph.UITrigger, ops[0].Type)
	assert.Equal(t, "useEffect:Dashboard", ops[0].Name)
	assert.Equal(t, "mount", ops[0].Metadata["event"])
}

func TestComponentFallsBackToFileName(t *testing.T) {
	src := `<button onClick={go}>go</button>`
	ops, _ := New().Detect("widgets/GoButton.tsx", []byte(src))
	require.Len(t, ops, 1)
	assert.Equal(t, "GoButton", ops[0].Metadata["component"])
}

func TestDetectRouteDeclarations(t *testing.T) {
	src := `export function App() {
  return (
    <Routes>
      <Route path="/orders" element={<OrderList />} />
      <Route path="/orders/:id" element={<OrderDetail />} />
    </Routes>
  );
}
`
	ops, _ := New().Detect("App.tsx", []byte(src))
	require.Len(t, ops, 2)
	assert.Equal(t, graph.UITrigger, ops[0].Type)
	assert.Equal(t, "route:/orders", ops[0].Name)
	assert.Equal(t, "navigation", ops[0].Metadata["event"])
	assert.Equal(t, "/orders/:id", ops[1].Metadata["route"])
}
