package inspect

import (
	"bytes"
	"errors"
	"sync"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/bombpot/sdk/solver"
)

// Frame types sent to clients.
const (
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// ErrUnknownFrame is returned by Marshal and Unmarshal for unsupported values.
var ErrUnknownFrame = errors.New("unknown frame type")

// Snapshot describes the solver and its focus node at one instant.
type Snapshot struct {
	Type          string    `msg:"type"`
	State         string    `msg:"state"`
	Iterations    int64     `msg:"iterations"`
	DecisionNodes int64     `msg:"decision_nodes"`
	ChanceNodes   int64     `msg:"chance_nodes"`
	Node          NodeFrame `msg:"node"`
}

// NodeFrame is the wire form of solver.NodeReport.
type NodeFrame struct {
	Kind        string      `msg:"kind"`
	Path        string      `msg:"path"`
	Street      string      `msg:"street"`
	Seat        int         `msg:"seat"`
	Position    string      `msg:"position"`
	Actions     []string    `msg:"actions"`
	Children    []string    `msg:"children"`
	HandsSeen   int         `msg:"hands_seen"`
	TotalVisits float64     `msg:"total_visits"`
	Hands       []HandFrame `msg:"hands"`
}

// HandFrame is one row of a NodeFrame.
type HandFrame struct {
	Hand     string    `msg:"hand"`
	Category string    `msg:"category"`
	Strategy []float64 `msg:"strategy"`
	Average  []float64 `msg:"average"`
	Visits   float64   `msg:"visits"`
}

// ErrorFrame reports a rejected command.
type ErrorFrame struct {
	Type    string `msg:"type"`
	Message string `msg:"message"`
}

func newNodeFrame(r solver.NodeReport) NodeFrame {
	f := NodeFrame{
		Kind:        r.Kind,
		Path:        r.Path,
		Street:      r.Street,
		Seat:        r.Seat,
		Position:    r.Position,
		Actions:     r.Actions,
		Children:    r.Children,
		HandsSeen:   r.HandsSeen,
		TotalVisits: r.TotalVisits,
		Hands:       make([]HandFrame, len(r.Hands)),
	}
	for i, h := range r.Hands {
		f.Hands[i] = HandFrame(h)
	}
	return f
}

var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// Marshal serializes a frame to msgpack.
func Marshal(v msgp.Encodable) ([]byte, error) {
	switch v.(type) {
	case *Snapshot, *ErrorFrame:
	default:
		return nil, ErrUnknownFrame
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	w := msgp.NewWriter(buf)
	if err := v.EncodeMsg(w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Unmarshal decodes msgpack data into a frame.
func Unmarshal(data []byte, v msgp.Decodable) error {
	switch v.(type) {
	case *Snapshot, *ErrorFrame:
	default:
		return ErrUnknownFrame
	}
	return v.DecodeMsg(msgp.NewReader(bytes.NewReader(data)))
}

// PeekType returns the type field of an encoded frame.
func PeekType(data []byte) (string, error) {
	sz, rest, err := msgp.ReadMapHeaderBytes(data)
	if err != nil {
		return "", err
	}
	for i := uint32(0); i < sz; i++ {
		var field []byte
		field, rest, err = msgp.ReadMapKeyZC(rest)
		if err != nil {
			return "", err
		}
		if msgp.UnsafeString(field) == "type" {
			s, _, err := msgp.ReadStringBytes(rest)
			return s, err
		}
		if rest, err = msgp.Skip(rest); err != nil {
			return "", err
		}
	}
	return "", ErrUnknownFrame
}

// EncodeMsg implements msgp.Encodable
func (z *Snapshot) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(6); err != nil {
		return
	}
	if err = writeStringField(en, "type", z.Type); err != nil {
		return msgp.WrapError(err, "Type")
	}
	if err = writeStringField(en, "state", z.State); err != nil {
		return msgp.WrapError(err, "State")
	}
	if err = en.WriteString("iterations"); err != nil {
		return
	}
	if err = en.WriteInt64(z.Iterations); err != nil {
		return msgp.WrapError(err, "Iterations")
	}
	if err = en.WriteString("decision_nodes"); err != nil {
		return
	}
	if err = en.WriteInt64(z.DecisionNodes); err != nil {
		return msgp.WrapError(err, "DecisionNodes")
	}
	if err = en.WriteString("chance_nodes"); err != nil {
		return
	}
	if err = en.WriteInt64(z.ChanceNodes); err != nil {
		return msgp.WrapError(err, "ChanceNodes")
	}
	if err = en.WriteString("node"); err != nil {
		return
	}
	if err = z.Node.EncodeMsg(en); err != nil {
		return msgp.WrapError(err, "Node")
	}
	return
}

// DecodeMsg implements msgp.Decodable
func (z *Snapshot) DecodeMsg(dc *msgp.Reader) (err error) {
	var field []byte
	var sz uint32
	sz, err = dc.ReadMapHeader()
	if err != nil {
		return
	}
	for sz > 0 {
		sz--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return
		}
		switch msgp.UnsafeString(field) {
		case "type":
			z.Type, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Type")
			}
		case "state":
			z.State, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "State")
			}
		case "iterations":
			z.Iterations, err = dc.ReadInt64()
			if err != nil {
				return msgp.WrapError(err, "Iterations")
			}
		case "decision_nodes":
			z.DecisionNodes, err = dc.ReadInt64()
			if err != nil {
				return msgp.WrapError(err, "DecisionNodes")
			}
		case "chance_nodes":
			z.ChanceNodes, err = dc.ReadInt64()
			if err != nil {
				return msgp.WrapError(err, "ChanceNodes")
			}
		case "node":
			if err = z.Node.DecodeMsg(dc); err != nil {
				return msgp.WrapError(err, "Node")
			}
		default:
			if err = dc.Skip(); err != nil {
				return
			}
		}
	}
	return
}

// EncodeMsg implements msgp.Encodable
func (z *NodeFrame) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(10); err != nil {
		return
	}
	if err = writeStringField(en, "kind", z.Kind); err != nil {
		return msgp.WrapError(err, "Kind")
	}
	if err = writeStringField(en, "path", z.Path); err != nil {
		return msgp.WrapError(err, "Path")
	}
	if err = writeStringField(en, "street", z.Street); err != nil {
		return msgp.WrapError(err, "Street")
	}
	if err = en.WriteString("seat"); err != nil {
		return
	}
	if err = en.WriteInt(z.Seat); err != nil {
		return msgp.WrapError(err, "Seat")
	}
	if err = writeStringField(en, "position", z.Position); err != nil {
		return msgp.WrapError(err, "Position")
	}
	if err = en.WriteString("actions"); err != nil {
		return
	}
	if err = writeStrings(en, z.Actions); err != nil {
		return msgp.WrapError(err, "Actions")
	}
	if err = en.WriteString("children"); err != nil {
		return
	}
	if err = writeStrings(en, z.Children); err != nil {
		return msgp.WrapError(err, "Children")
	}
	if err = en.WriteString("hands_seen"); err != nil {
		return
	}
	if err = en.WriteInt(z.HandsSeen); err != nil {
		return msgp.WrapError(err, "HandsSeen")
	}
	if err = en.WriteString("total_visits"); err != nil {
		return
	}
	if err = en.WriteFloat64(z.TotalVisits); err != nil {
		return msgp.WrapError(err, "TotalVisits")
	}
	if err = en.WriteString("hands"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(z.Hands))); err != nil {
		return msgp.WrapError(err, "Hands")
	}
	for i := range z.Hands {
		if err = z.Hands[i].EncodeMsg(en); err != nil {
			return msgp.WrapError(err, "Hands", i)
		}
	}
	return
}

// DecodeMsg implements msgp.Decodable
func (z *NodeFrame) DecodeMsg(dc *msgp.Reader) (err error) {
	var field []byte
	var sz uint32
	sz, err = dc.ReadMapHeader()
	if err != nil {
		return
	}
	for sz > 0 {
		sz--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return
		}
		switch msgp.UnsafeString(field) {
		case "kind":
			z.Kind, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Kind")
			}
		case "path":
			z.Path, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Path")
			}
		case "street":
			z.Street, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Street")
			}
		case "seat":
			z.Seat, err = dc.ReadInt()
			if err != nil {
				return msgp.WrapError(err, "Seat")
			}
		case "position":
			z.Position, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Position")
			}
		case "actions":
			z.Actions, err = readStrings(dc)
			if err != nil {
				return msgp.WrapError(err, "Actions")
			}
		case "children":
			z.Children, err = readStrings(dc)
			if err != nil {
				return msgp.WrapError(err, "Children")
			}
		case "hands_seen":
			z.HandsSeen, err = dc.ReadInt()
			if err != nil {
				return msgp.WrapError(err, "HandsSeen")
			}
		case "total_visits":
			z.TotalVisits, err = dc.ReadFloat64()
			if err != nil {
				return msgp.WrapError(err, "TotalVisits")
			}
		case "hands":
			var n uint32
			n, err = dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "Hands")
			}
			z.Hands = make([]HandFrame, n)
			for i := range z.Hands {
				if err = z.Hands[i].DecodeMsg(dc); err != nil {
					return msgp.WrapError(err, "Hands", i)
				}
			}
		default:
			if err = dc.Skip(); err != nil {
				return
			}
		}
	}
	return
}

// EncodeMsg implements msgp.Encodable
func (z *HandFrame) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(5); err != nil {
		return
	}
	if err = writeStringField(en, "hand", z.Hand); err != nil {
		return msgp.WrapError(err, "Hand")
	}
	if err = writeStringField(en, "category", z.Category); err != nil {
		return msgp.WrapError(err, "Category")
	}
	if err = en.WriteString("strategy"); err != nil {
		return
	}
	if err = writeFloats(en, z.Strategy); err != nil {
		return msgp.WrapError(err, "Strategy")
	}
	if err = en.WriteString("average"); err != nil {
		return
	}
	if err = writeFloats(en, z.Average); err != nil {
		return msgp.WrapError(err, "Average")
	}
	if err = en.WriteString("visits"); err != nil {
		return
	}
	if err = en.WriteFloat64(z.Visits); err != nil {
		return msgp.WrapError(err, "Visits")
	}
	return
}

// DecodeMsg implements msgp.Decodable
func (z *HandFrame) DecodeMsg(dc *msgp.Reader) (err error) {
	var field []byte
	var sz uint32
	sz, err = dc.ReadMapHeader()
	if err != nil {
		return
	}
	for sz > 0 {
		sz--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return
		}
		switch msgp.UnsafeString(field) {
		case "hand":
			z.Hand, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Hand")
			}
		case "category":
			z.Category, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Category")
			}
		case "strategy":
			z.Strategy, err = readFloats(dc)
			if err != nil {
				return msgp.WrapError(err, "Strategy")
			}
		case "average":
			z.Average, err = readFloats(dc)
			if err != nil {
				return msgp.WrapError(err, "Average")
			}
		case "visits":
			z.Visits, err = dc.ReadFloat64()
			if err != nil {
				return msgp.WrapError(err, "Visits")
			}
		default:
			if err = dc.Skip(); err != nil {
				return
			}
		}
	}
	return
}

// EncodeMsg implements msgp.Encodable
func (z *ErrorFrame) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(2); err != nil {
		return
	}
	if err = writeStringField(en, "type", z.Type); err != nil {
		return msgp.WrapError(err, "Type")
	}
	if err = writeStringField(en, "message", z.Message); err != nil {
		return msgp.WrapError(err, "Message")
	}
	return
}

// DecodeMsg implements msgp.Decodable
func (z *ErrorFrame) DecodeMsg(dc *msgp.Reader) (err error) {
	var field []byte
	var sz uint32
	sz, err = dc.ReadMapHeader()
	if err != nil {
		return
	}
	for sz > 0 {
		sz--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return
		}
		switch msgp.UnsafeString(field) {
		case "type":
			z.Type, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Type")
			}
		case "message":
			z.Message, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Message")
			}
		default:
			if err = dc.Skip(); err != nil {
				return
			}
		}
	}
	return
}

func writeStringField(en *msgp.Writer, key, value string) error {
	if err := en.WriteString(key); err != nil {
		return err
	}
	return en.WriteString(value)
}

func writeStrings(en *msgp.Writer, ss []string) error {
	if err := en.WriteArrayHeader(uint32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := en.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(dc *msgp.Reader) ([]string, error) {
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		if out[i], err = dc.ReadString(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeFloats(en *msgp.Writer, fs []float64) error {
	if err := en.WriteArrayHeader(uint32(len(fs))); err != nil {
		return err
	}
	for _, f := range fs {
		if err := en.WriteFloat64(f); err != nil {
			return err
		}
	}
	return nil
}

func readFloats(dc *msgp.Reader) ([]float64, error) {
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		if out[i], err = dc.ReadFloat64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
