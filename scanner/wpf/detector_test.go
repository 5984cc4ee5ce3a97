package wpf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/scanner/graph"
)

const mainWindowXAML = `<Window x:Class="Inventory.MainWindow"
        xmlns="http://schemas.microsoft.com/winfx/2006/xaml/presentation"
        xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml"
        Loaded="Window_Loaded">
    <StackPanel>
        <Button x:Name="SyncButton" Click="SyncButton_Click" Content="Sync" />
        <ListBox SelectionChanged="Items_SelectionChanged" />
    </StackPanel>
</Window>
`

const mainWindowCodeBehind = `namespace Inventory
{
    public partial class MainWindow : Window
    {
        private async void SyncButton_Click(object sender, RoutedEventArgs e)
        {
            var client = new WebClient();
            var payload = client.DownloadString("https://sync.internal/api/stock");
            Render(payload);
        }
    }
}
`

func TestRecognizes(t *testing.T) {
	d := New()
	assert.True(t, d.Recognizes("MainWindow.xaml"))
	assert.True(t, d.Recognizes("MainWindow.xaml.cs"))
	assert.False(t, d.Recognizes("Service.cs"))
	assert.False(t, d.Recognizes("view.html"))
}

func TestDetectMarkupEvents(t *testing.T) {
	ops, _ := New().Detect("MainWindow.xaml", []byte(mainWindowXAML))
	require.Len(t, ops, 3)

	for _, op := range ops {
		assert.Equal(t, graph.UITrigger, op.Type)
		assert.Equal(t, "Inventory.MainWindow", op.Metadata["component"])
	}
	assert.Equal(t, "Loaded:Window_Loaded", ops[0].Name)
	assert.Equal(t, 4, ops[0].Line)
	assert.Equal(t, "SyncButton.Click:SyncButton_Click", ops[1].Name)
	assert.Equal(t, 6, ops[1].Line)
	assert.Equal(t, "SyncButton_Click", ops[1].Metadata["handler"])
}

func TestDetectCodeBehind(t *testing.T) {
	ops, _ := New().Detect("MainWindow.xaml.cs", []byte(mainWindowCodeBehind))

	var handlers, calls []graph.Operation
	for _, op := range ops {
		switch op.Type {
		case graph.UITrigger:
			handlers = append(handlers, op)
		case graph.HTTPCall:
			calls = append(calls, op)
		}
	}
	require.Len(t, handlers, 1)
	assert.Equal(t, "SyncButton_Click", handlers[0].Name)
	assert.Equal(t, 5, handlers[0].Line)

	require.Len(t, calls, 1)
	assert.Equal(t, 8, calls[0].Line)
	assert.Equal(t, "https://sync.internal/api/stock", calls[0].Endpoint)
	assert.Equal(t, "WebClient", calls[0].Metadata["library"])
}

func TestHandlerChainsToCallByProximity(t *testing.T) {
	// handler at line 5, call at line 8: inside the default window,
	// so the ui_trigger chains to the http_call in the same file
	ops, _ := New().Detect("MainWindow.xaml.cs", []byte(mainWindowCodeBehind))
	require.Len(t, ops, 2)
	assert.Less(t, ops[0].Line, ops[1].Line)
	assert.Equal(t, graph.UITrigger, ops[0].Type)
	assert.Equal(t, graph.HTTPCall, ops[1].Type)
}
