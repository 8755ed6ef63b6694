package wiring

// StandardOutputWire is an output wire not driven by a scheduler's handler
// return value: the owner forwards values into it directly. Used by
// sources at the edge of the graph, such as gossip and the PCES replayer.
type StandardOutputWire[T any] struct {
	*OutputWire[T]
}

// NewStandardOutputWire creates a manually driven output wire. The wire
// appears in the model as a DIRECT source node.
func NewStandardOutputWire[T any](model *Model, name string) *StandardOutputWire[T] {
	source := &schedulerCore{
		model: model,
		name:  name,
		stype: Direct,
	}
	model.registerScheduler(source)
	return &StandardOutputWire[T]{
		OutputWire: newOutputWire[T](model, source, name),
	}
}

// Forward delivers a value to every soldered downstream in solder order.
func (o *StandardOutputWire[T]) Forward(value T) {
	o.forward(value)
}
