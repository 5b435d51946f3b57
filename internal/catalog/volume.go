package catalog

import (
	"tacore/internal/model"
	"tacore/pkg/indicator"
)

func volume() []Entry {
	return []Entry{
		{
			Name: "OBV", Group: GroupVolume, Help: "on-balance volume",
			Inputs: []model.Field{model.FieldClose, model.FieldVolume}, Outputs: value,
			lookback: func(Params) (int, error) { return indicator.OBVLookback() },
			compute: func(c indicator.Calc[F], in inputs, _ Params, out [][]F) (Stepper, error) {
				st, err := c.OBV(in.cols[0], in.cols[1], out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.OBVState[F]) ([]F, indicator.OBVState[F], error) {
					v, st, err := indicator.OBVNext(h.at(0, 0), h.at(1, 0), st)
					return one(v), st, err
				}), nil
			},
		},
		{
			Name: "AD", Group: GroupVolume, Help: "Chaikin accumulation/distribution line",
			Inputs: hlcv, Outputs: value,
			lookback: func(Params) (int, error) { return indicator.ADLookback() },
			compute: func(c indicator.Calc[F], in inputs, _ Params, out [][]F) (Stepper, error) {
				st, err := c.AD(in.cols[0], in.cols[1], in.cols[2], in.cols[3], out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.ADState[F]) ([]F, indicator.ADState[F], error) {
					v, st, err := indicator.ADNext(h.at(0, 0), h.at(1, 0), h.at(2, 0), h.at(3, 0), st)
					return one(v), st, err
				}), nil
			},
		},
		{
			Name: "ADOSC", Group: GroupVolume, Help: "Chaikin A/D oscillator",
			Inputs: hlcv, Outputs: value,
			Params: []Param{intParam("fast", 3, "fast EMA period"), intParam("slow", 10, "slow EMA period")},
			lookback: func(p Params) (int, error) { return indicator.ADOSCLookback(adoscParams(p)) },
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				ap := adoscParams(p)
				st, err := c.ADOSC(in.cols[0], in.cols[1], in.cols[2], in.cols[3], ap, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.ADOSCState[F]) ([]F, indicator.ADOSCState[F], error) {
					v, st, err := indicator.ADOSCNext(h.at(0, 0), h.at(1, 0), h.at(2, 0), h.at(3, 0), st, ap)
					return one(v), st, err
				}), nil
			},
		},
	}
}

func adoscParams(p Params) indicator.ADOSCParams {
	return indicator.ADOSCParams{Fast: p.n("fast"), Slow: p.n("slow")}
}
