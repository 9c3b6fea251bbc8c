package canvas

// ShaderCommand is one atomic terminal operation in the stream produced by
// diffing two frames. The event loop's writer translates the stream into
// escape sequences.
type ShaderCommand interface {
	isShaderCommand()
}

// CursorGoto moves the terminal cursor to (X, Y), 0-based.
type CursorGoto struct {
	X uint16
	Y uint16
}

// Print writes Text at the current position with the given pen.
type Print struct {
	Text  string
	Fg    Color
	Bg    Color
	Attrs Attr
}

// CursorHide hides the terminal cursor.
type CursorHide struct{}

// CursorShow shows the terminal cursor.
type CursorShow struct{}

// CursorBlinkOn enables cursor blinking.
type CursorBlinkOn struct{}

// CursorBlinkOff disables cursor blinking.
type CursorBlinkOff struct{}

// CursorSetStyle changes the cursor shape.
type CursorSetStyle struct {
	Style CursorStyle
}

func (CursorGoto) isShaderCommand()     {}
func (Print) isShaderCommand()          {}
func (CursorHide) isShaderCommand()     {}
func (CursorShow) isShaderCommand()     {}
func (CursorBlinkOn) isShaderCommand()  {}
func (CursorBlinkOff) isShaderCommand() {}
func (CursorSetStyle) isShaderCommand() {}

// Shader is the ordered command stream for one refresh.
type Shader struct {
	Commands []ShaderCommand
}

func (s *Shader) push(cmd ShaderCommand) {
	s.Commands = append(s.Commands, cmd)
}
