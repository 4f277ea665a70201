package relay

import (
	"fmt"

	"github.com/Semior001/forwardhook/pkg/discovery"
	"github.com/Semior001/forwardhook/pkg/jsonval"
)

// BuildDocument rebuilds the outgoing document from the inbound body,
// moving values between them per the field mappings of the route.
//
// A failed read of an optional mapping skips it; a failed read of a required
// mapping aborts the whole dispatch, so that no partial document is ever
// forwarded. Values are copied, a later mutation of the inbound body must
// not show up in the produced document.
func BuildDocument(route discovery.Route, body *jsonval.Value) (*jsonval.Value, error) {
	doc := jsonval.NewObject()

	for idx, f := range route.Fields {
		val, err := jsonval.Resolve(f.From, body)
		if err != nil {
			if f.Optional {
				continue
			}
			return nil, fmt.Errorf("read field #%d at %q: %w", idx, f.From, err)
		}

		loc, err := jsonval.Materialize(f.To, doc)
		if err != nil {
			return nil, fmt.Errorf("write field #%d at %q: %w", idx, f.To, err)
		}

		*loc = *val.Clone()
	}

	return doc, nil
}
