package effect

// CommandType tags a Command's intent (spec.md §3.4).
type CommandType uint8

const (
	EnableEffect CommandType = iota
	DisableEffect
	ToggleEffect
	SetParameter
)

// Command is the tagged record the input layer emits on the
// commandQueue SPSC ring, consumed by the control thread.
type Command struct {
	Type         CommandType
	TargetEffect ID
	Param1       uint8
	Value        float32
}
