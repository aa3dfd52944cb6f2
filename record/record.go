// Package record defines the editable data of each document kind.
//
// Field names follow the JSON shape of the editor forms, so a draft can move
// between the editor, the preview handoff and the export tools unchanged.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/lvillar/docsmith"
)

// Record is a document draft of any kind.
type Record interface {
	// Kind reports the document type of the record.
	Kind() docsmith.Kind
	// Identifier returns the user-provided number, title or name that names
	// the exported file. It may be empty.
	Identifier() string
	// Clone returns a deep copy that shares no mutable state with the receiver.
	Clone() Record
}

// New returns an empty record of the given kind.
func New(kind docsmith.Kind) (Record, error) {
	switch kind {
	case docsmith.KindInvoice:
		return &Invoice{Currency: DefaultCurrency}, nil
	case docsmith.KindQuotation:
		return &Quotation{Invoice: Invoice{Currency: DefaultCurrency}}, nil
	case docsmith.KindCV:
		return &CV{}, nil
	case docsmith.KindCoverLetter:
		return &CoverLetter{}, nil
	case docsmith.KindContract:
		return &Contract{}, nil
	case docsmith.KindBusinessCard:
		return &BusinessCard{}, nil
	}
	return nil, fmt.Errorf("record: %w: %q", docsmith.ErrUnknownKind, kind)
}

// Decode parses a JSON document of the given kind.
func Decode(kind docsmith.Kind, data []byte) (Record, error) {
	rec, err := New(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("record: decoding %s: %w", kind, err)
	}
	return rec, nil
}

// Encode returns the JSON form of rec.
func Encode(rec Record) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("record: %w: nil record", docsmith.ErrInvalidParam)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("record: encoding %s: %w", rec.Kind(), err)
	}
	return data, nil
}
