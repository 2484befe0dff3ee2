package engine

// phaseGravity is tick phase 1 (spec.md §4.4): add g to the southward
// velocity slot of every non-wall interior cell whose south neighbour is
// also non-wall.
func (e *Engine) phaseGravity() {
	south := Delta{1, 0}
	for x := 0; x < e.rows; x++ {
		for y := 0; y < e.cols; y++ {
			if e.field.At(x, y) == Wall {
				continue
			}
			if !e.neighborNonWall(x, y, south) {
				continue
			}
			row := e.velocity.Ptr(x, y)
			row.add(south.DX, south.DY, e.g)
		}
	}
}

// phasePressureVelocity is tick phase 2 (spec.md §4.4): snapshot p into
// old_p, then for every downhill neighbour pair either debit the neighbour's
// opposing flow or push new velocity toward it and debit our own pressure.
func (e *Engine) phasePressureVelocity() {
	e.oldP.CopyFrom(e.p)

	for x := 0; x < e.rows; x++ {
		for y := 0; y < e.cols; y++ {
			kind := e.field.At(x, y)
			if kind == Wall {
				continue
			}
			for _, d := range Deltas {
				nx, ny := x+d.DX, y+d.DY
				if nx < 0 || nx >= e.rows || ny < 0 || ny >= e.cols {
					continue
				}
				nkind := e.field.At(nx, ny)
				if nkind == Wall {
					continue
				}
				here := e.oldP.At(x, y)
				there := e.oldP.At(nx, ny)
				if there.Cmp(here) >= 0 {
					continue
				}
				force := here.Sub(there)

				nRho := e.rhoOf(nkind)
				nRow := e.velocity.Ptr(nx, ny)
				back := opposite(d)
				contr := nRow.get(back.DX, back.DY)

				if contr.Mul(nRho).Cmp(force) >= 0 {
					scaled, err := force.Div(nRho)
					if err != nil {
						panic(err)
					}
					nRow.set(back.DX, back.DY, contr.Sub(scaled))
					continue
				}

				force = force.Sub(contr.Mul(nRho))
				nRow.set(back.DX, back.DY, contr.Typ.Zero())

				myRho := e.rhoOf(kind)
				delta, err := force.Div(myRho)
				if err != nil {
					panic(err)
				}
				myRow := e.velocity.Ptr(x, y)
				myRow.add(d.DX, d.DY, delta)

				dirsHere := e.dirs.At(x, y)
				if dirsHere == 0 {
					panic("engine: dirs[x,y] == 0 for non-wall cell, violates field-generator invariant")
				}
				drop, err := force.Div(e.types.P.FromInt(int64(dirsHere)))
				if err != nil {
					panic(err)
				}
				e.p.Set(x, y, e.p.At(x, y).Sub(drop))
			}
		}
	}
}

// phaseRecalcPressure is tick phase 4 (spec.md §4.4): convert the residual
// kinetic energy left over from phase 3's flow commitment back into
// pressure.
func (e *Engine) phaseRecalcPressure() {
	for x := 0; x < e.rows; x++ {
		for y := 0; y < e.cols; y++ {
			kind := e.field.At(x, y)
			if kind == Wall {
				continue
			}
			row := e.velocity.Ptr(x, y)
			flowRow := e.velFlow.Ptr(x, y)
			for _, d := range Deltas {
				oldV := row.get(d.DX, d.DY)
				if oldV.Sign() <= 0 {
					continue
				}
				newV := flowRow.get(d.DX, d.DY)
				row.set(d.DX, d.DY, newV)
				force := oldV.Sub(newV).Mul(e.rhoOf(kind))
				if kind == Water {
					force = force.MulFloat(0.8)
				}
				nx, ny := x+d.DX, y+d.DY
				inBounds := nx >= 0 && nx < e.rows && ny >= 0 && ny < e.cols
				if !inBounds || e.field.At(nx, ny) == Wall {
					dirsHere := e.dirs.At(x, y)
					share, err := force.Div(e.types.P.FromInt(int64(dirsHere)))
					if err != nil {
						panic(err)
					}
					e.p.Set(x, y, e.p.At(x, y).Add(share))
				} else {
					dirsThere := e.dirs.At(nx, ny)
					share, err := force.Div(e.types.P.FromInt(int64(dirsThere)))
					if err != nil {
						panic(err)
					}
					e.p.Set(nx, ny, e.p.At(nx, ny).Add(share))
				}
			}
		}
	}
}
