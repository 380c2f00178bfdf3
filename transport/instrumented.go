package transport

import (
	"context"

	"treeval/codec"
	"treeval/metrics"
)

type instrumented struct {
	Transport
	collector metrics.Collector
}

// Instrument counts the words and failures going through t.
func Instrument(t Transport, collector metrics.Collector) Transport {
	return &instrumented{Transport: t, collector: collector}
}

func (i *instrumented) Send(ctx context.Context, w codec.Word) error {
	if err := i.Transport.Send(ctx, w); err != nil {
		i.collector.TransportFailure("send")
		return err
	}
	i.collector.CommandSent(codec.KindOf(w).String())
	return nil
}

func (i *instrumented) Receive(ctx context.Context) (codec.Word, error) {
	w, err := i.Transport.Receive(ctx)
	if err != nil {
		i.collector.TransportFailure("receive")
		return 0, err
	}
	i.collector.ResultReceived()
	return w, nil
}
