package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pthm-cable/fluidsim/fluiderr"
	"github.com/pthm-cable/fluidsim/grid"
	"github.com/pthm-cable/fluidsim/numeric"
)

// checkpointPayload is the JSON structured document described in spec.md
// §4.6: tick, the flat payload of each grid, the density table, and g.
// Scalar grids are encoded as raw signed-integer bit patterns for
// fixed-point types and as float64 for DOUBLE/FLOAT, chosen per the
// relevant numeric.Type's Kind at encode/decode time.
type checkpointPayload struct {
	Tick     int64  `json:"tick"`
	UT       int64  `json:"ut"`
	RNGDraws uint64 `json:"rng_draws"`

	Field []string `json:"field"`

	P    []json.Number `json:"p"`
	OldP []json.Number `json:"old_p"`

	Velocity     []json.Number `json:"velocity"`
	VelocityFlow []json.Number `json:"velocity_flow"`

	LastUse []int64 `json:"last_use"`
	Dirs    []int   `json:"dirs"`

	RhoGas json.Number `json:"rho_gas"`
	RhoWat json.Number `json:"rho_wat"`
	G      json.Number `json:"g"`
}

// Save writes a tick checkpoint (spec.md §4.6): a two-line header
// (`p_type v_type vf_type` then `rows cols`) followed by the JSON payload.
func (e *Engine) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s %s %s\n", e.types.P, e.types.V, e.types.Vf); err != nil {
		return fluiderr.NewIOError("write checkpoint header", err)
	}
	if _, err := fmt.Fprintf(bw, "%d %d\n", e.rows, e.cols); err != nil {
		return fluiderr.NewIOError("write checkpoint header", err)
	}

	payload := checkpointPayload{
		Tick:     e.tick,
		UT:       e.ut,
		RNGDraws: e.rng.Draws(),
		RhoGas:   scalarNumber(e.rhoGas),
		RhoWat:   scalarNumber(e.rhoWat),
		G:        scalarNumber(e.g),
	}

	for x := 0; x < e.rows; x++ {
		row := make([]byte, e.cols)
		for y := 0; y < e.cols; y++ {
			row[y] = byte(e.field.At(x, y))
		}
		payload.Field = append(payload.Field, string(row))
	}
	for _, v := range e.p.Raw() {
		payload.P = append(payload.P, scalarNumber(v))
	}
	for _, v := range e.oldP.Raw() {
		payload.OldP = append(payload.OldP, scalarNumber(v))
	}
	for _, row := range e.velocity.Raw() {
		for d := 0; d < 4; d++ {
			payload.Velocity = append(payload.Velocity, scalarNumber(row[d]))
		}
	}
	for _, row := range e.velFlow.Raw() {
		for d := 0; d < 4; d++ {
			payload.VelocityFlow = append(payload.VelocityFlow, scalarNumber(row[d]))
		}
	}
	payload.LastUse = append(payload.LastUse, e.lastUse.Raw()...)
	payload.Dirs = append(payload.Dirs, e.dirs.Raw()...)

	enc := json.NewEncoder(bw)
	if err := enc.Encode(payload); err != nil {
		return fluiderr.NewIOError("encode checkpoint payload", err)
	}
	return bw.Flush()
}

// Load restores an engine from a checkpoint written by Save. cfg supplies
// NumWorkers and the original run's Seed (not part of the checkpoint
// payload); the numeric types and grid dimensions come from the header. The
// RNG stream is replayed from cfg.Seed up to the persisted draw count, so
// cfg.Seed must match the checkpointed run's seed for determinism to hold.
func Load(r io.Reader, cfg Config) (*Engine, error) {
	br := bufio.NewReader(r)

	typeLine, err := br.ReadString('\n')
	if err != nil {
		return nil, fluiderr.NewIOError("read checkpoint header", err)
	}
	var pStr, vStr, vfStr string
	if _, err := fmt.Sscan(strings.TrimSpace(typeLine), &pStr, &vStr, &vfStr); err != nil {
		return nil, fluiderr.NewIOError("parse checkpoint header", err)
	}
	pType, err := numeric.ParseType(pStr)
	if err != nil {
		return nil, fluiderr.NewIOError("parse checkpoint p_type", err)
	}
	vType, err := numeric.ParseType(vStr)
	if err != nil {
		return nil, fluiderr.NewIOError("parse checkpoint v_type", err)
	}
	vfType, err := numeric.ParseType(vfStr)
	if err != nil {
		return nil, fluiderr.NewIOError("parse checkpoint vf_type", err)
	}

	dimLine, err := br.ReadString('\n')
	if err != nil {
		return nil, fluiderr.NewIOError("read checkpoint header", err)
	}
	var rows, cols int
	if _, err := fmt.Sscan(strings.TrimSpace(dimLine), &rows, &cols); err != nil {
		return nil, fluiderr.NewIOError("parse checkpoint dimensions", err)
	}

	var payload checkpointPayload
	dec := json.NewDecoder(br)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fluiderr.NewIOError("decode checkpoint payload", err)
	}

	types := Types{P: pType, V: vType, Vf: vfType}
	e := New(types, rows, cols, cfg)
	e.tick = payload.Tick
	e.ut = payload.UT
	e.rng = numeric.Restore(cfg.Seed, payload.RNGDraws)
	e.rhoGas = scalarValue(pType, payload.RhoGas)
	e.rhoWat = scalarValue(pType, payload.RhoWat)
	e.g = scalarValue(vType, payload.G)

	if len(payload.Field) != rows {
		return nil, fluiderr.NewIOError("restore checkpoint", fmt.Errorf("field has %d rows, want %d", len(payload.Field), rows))
	}
	for x, line := range payload.Field {
		if len(line) != cols {
			return nil, fluiderr.NewIOError("restore checkpoint", fmt.Errorf("field row %d has %d cols, want %d", x, len(line), cols))
		}
		for y := 0; y < cols; y++ {
			e.field.Set(x, y, CellKind(line[y]))
		}
	}

	if err := fillScalarGrid(e.p, pType, payload.P); err != nil {
		return nil, err
	}
	if err := fillScalarGrid(e.oldP, pType, payload.OldP); err != nil {
		return nil, err
	}
	if err := fillVelRowGrid(e.velocity, vType, payload.Velocity); err != nil {
		return nil, err
	}
	if err := fillVelRowGrid(e.velFlow, vfType, payload.VelocityFlow); err != nil {
		return nil, err
	}

	if len(payload.LastUse) != rows*cols {
		return nil, fluiderr.NewIOError("restore checkpoint", fmt.Errorf("last_use has %d entries, want %d", len(payload.LastUse), rows*cols))
	}
	copy(e.lastUse.Raw(), payload.LastUse)

	if len(payload.Dirs) != rows*cols {
		return nil, fluiderr.NewIOError("restore checkpoint", fmt.Errorf("dirs has %d entries, want %d", len(payload.Dirs), rows*cols))
	}
	copy(e.dirs.Raw(), payload.Dirs)

	return e, nil
}

// scalarNumber encodes v as a json.Number: the raw signed-integer bit
// pattern for fixed-point families, the plain float64 otherwise.
func scalarNumber(v numeric.Value) json.Number {
	if v.Typ.Kind == numeric.KindFixed || v.Typ.Kind == numeric.KindFastFixed {
		return json.Number(fmt.Sprintf("%d", v.Raw()))
	}
	return json.Number(fmt.Sprintf("%g", v.Float64()))
}

// scalarValue decodes n back into a numeric.Value of type t.
func scalarValue(t numeric.Type, n json.Number) numeric.Value {
	if t.Kind == numeric.KindFixed || t.Kind == numeric.KindFastFixed {
		raw, err := n.Int64()
		if err != nil {
			panic(fmt.Sprintf("engine: checkpoint scalar %q is not an integer for fixed-point type %s", n, t))
		}
		return t.FromRaw(raw)
	}
	f, err := n.Float64()
	if err != nil {
		panic(fmt.Sprintf("engine: checkpoint scalar %q is not a float for type %s", n, t))
	}
	return t.FromFloat(f)
}

func fillScalarGrid(g *grid.Grid[numeric.Value], t numeric.Type, nums []json.Number) error {
	raw := g.Raw()
	if len(nums) != len(raw) {
		return fluiderr.NewIOError("restore checkpoint", fmt.Errorf("scalar grid has %d entries, want %d", len(nums), len(raw)))
	}
	for i, n := range nums {
		raw[i] = scalarValue(t, n)
	}
	return nil
}

func fillVelRowGrid(g *grid.Grid[velRow], t numeric.Type, nums []json.Number) error {
	raw := g.Raw()
	if len(nums) != len(raw)*4 {
		return fluiderr.NewIOError("restore checkpoint", fmt.Errorf("velocity grid has %d entries, want %d", len(nums), len(raw)*4))
	}
	for i := range raw {
		for d := 0; d < 4; d++ {
			raw[i][d] = scalarValue(t, nums[i*4+d])
		}
	}
	return nil
}
