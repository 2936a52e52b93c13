package main

import (
	"fmt"
	"io"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
	"github.com/xiaot623/gogo/chatrelay/internal/stream"
)

// Renderer prints relay events as they arrive.
type Renderer struct {
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Handle implements stream.RecordHandler.
func (r *Renderer) Handle(rec stream.Record) error {
	switch rec.Type {
	case domain.EventTypeMessage:
		var data domain.MessageEventData
		if err := rec.Decode(&data); err != nil {
			return err
		}
		fmt.Fprint(r.out, data.Content)

	case domain.EventTypeSources:
		var data domain.SourcesEventData
		if err := rec.Decode(&data); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "\n\nSources:")
		for i, s := range data.Sources {
			fmt.Fprintf(r.out, "  %d. %s %s\n", i+1, s.Title, s.URL)
		}

	case domain.EventTypeUsage:
		var data domain.UsageEventData
		if err := rec.Decode(&data); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "\n[usage] input=%d output=%d", data.Usage.Input, data.Usage.Output)

	case domain.EventTypeComplete:
		fmt.Fprintln(r.out)

	case domain.EventTypeError:
		var data domain.ErrorEventData
		if err := rec.Decode(&data); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "\n[%s] %s\n", data.Code, data.Message)

	default:
		fmt.Fprintf(r.out, "\n[%s] %s\n", rec.Type, string(rec.Data))
	}
	return nil
}
