package scope

// CommandKind is the type of a control surface request.
type CommandKind int

// Command kinds
const (
	CommandTogglePause CommandKind = iota
	CommandSetAxes
	CommandToggleAxes
	CommandSetPanel
	CommandTogglePanel
	CommandReset
)

// Command is a control request produced by a host (a key press, a remote
// call) and applied between ticks.
type Command struct {
	Kind  CommandKind
	Panel string
	On    bool
}

// Apply runs cmd against the controller. Unknown panel names are ignored.
func (c *Controller) Apply(cmd Command) {
	switch cmd.Kind {
	case CommandTogglePause:
		c.TogglePause()

	case CommandSetAxes:
		c.SetAxesVisible(cmd.On)

	case CommandToggleAxes:
		c.SetAxesVisible(!c.axesVisible)

	case CommandSetPanel:
		c.SetPanelEnabled(cmd.Panel, cmd.On)

	case CommandTogglePanel:
		if p := c.Panel(cmd.Panel); p != nil {
			c.SetPanelEnabled(cmd.Panel, !p.Enabled())
		}

	case CommandReset:
		c.Reset()
	}
}
