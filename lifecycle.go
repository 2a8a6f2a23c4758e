package conveyor

import "io"

// Close flushes pending writes best-effort, stops both background
// workers, and releases the backend if it implements io.Closer. It is
// safe to call with a sticky error already set — Close itself never
// returns that error, only a failure of its own shutdown steps.
func (e *Engine) Close() error {
	_ = e.flushLocked()

	e.lockBoth()
	e.readStop.Store(true)
	e.writeStop.Store(true)
	e.readProducer.Broadcast()
	e.readConsumer.Broadcast()
	e.writeProducer.Broadcast()
	e.writeConsumer.Broadcast()
	e.unlockBoth()

	e.readWG.Wait()
	e.writeWG.Wait()

	if closer, ok := e.backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return newError(CodeIO, err)
		}
	}

	e.logEvent("closed", nil)
	return nil
}
