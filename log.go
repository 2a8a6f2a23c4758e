package conveyor

// logEvent calls the engine's EventLogger, if one was configured,
// stamping every event with the engine's instance ID. It is a no-op
// otherwise, matching the teacher's instrument-through-errors-and-counters
// ambient style for a leaf library with no host process of its own.
func (e *Engine) logEvent(event string, fields map[string]any) {
	if e.logger == nil {
		return
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["engine_id"] = e.id
	e.logger(event, fields)
}
