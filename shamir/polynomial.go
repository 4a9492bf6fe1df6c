package shamir

import (
	"errors"
	"io"

	"github.com/vitalvas/sharekit/gf256"
	"github.com/vitalvas/sharekit/securemem"
	"github.com/vitalvas/sharekit/workpool"
)

// polynomials holds one polynomial of the given degree per prepared byte.
// Byte idx has constant term constants[idx] and coefficients
// coefficients[idx*degree+(j-1)] for j = 1..degree.
type polynomials struct {
	constants    *securemem.Buffer // nil means every constant term is zero
	coefficients *securemem.Buffer
	degree       int
	length       int
	params       shareParams
}

// shareParams is the metadata stamped on every share of one dealing.
type shareParams struct {
	threshold   uint8
	totalShares uint8
	integrity   bool
	compression bool
}

// newPolynomials draws length*degree random coefficients from rng. It takes
// ownership of constants, which may be nil for zero constant terms.
func newPolynomials(constants *securemem.Buffer, length, degree int, rng io.Reader, params shareParams) (*polynomials, error) {
	coefficients := securemem.New(length * degree)
	if _, err := io.ReadFull(rng, coefficients.Bytes()); err != nil {
		coefficients.Destroy()
		constants.Destroy()
		return nil, errors.Join(ErrIO, err)
	}

	return &polynomials{
		constants:    constants,
		coefficients: coefficients,
		degree:       degree,
		length:       length,
		params:       params,
	}, nil
}

// evaluate writes p_idx(x) for every byte into out using Horner's rule.
func (p *polynomials) evaluate(x gf256.Element, out []byte) {
	coefficients := p.coefficients.Bytes()
	constants := p.constants.Bytes()

	for idx := range p.length {
		row := coefficients[idx*p.degree : (idx+1)*p.degree]

		acc := gf256.Zero
		for j := p.degree; j >= 1; j-- {
			acc = acc.Mul(x).Add(gf256.Element(row[j-1]))
		}

		acc = acc.Mul(x)
		if constants != nil {
			acc = acc.Add(gf256.Element(constants[idx]))
		}

		out[idx] = byte(acc)
	}
}

// share evaluates every polynomial at index.
func (p *polynomials) share(index uint8) Share {
	data := make([]byte, p.length)
	p.evaluate(gf256.Element(index), data)

	return Share{
		Index:          index,
		Data:           data,
		Threshold:      p.params.threshold,
		TotalShares:    p.params.totalShares,
		IntegrityCheck: p.params.integrity,
		Compression:    p.params.compression,
	}
}

// shares evaluates indices first..first+n-1, spreading the work over workers.
func (p *polynomials) shares(first uint8, n, workers int) []Share {
	out := make([]Share, n)

	workpool.Range(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = p.share(first + uint8(i))
		}
	})

	return out
}

func (p *polynomials) destroy() {
	if p == nil {
		return
	}
	p.constants.Destroy()
	p.coefficients.Destroy()
}

// deal prepares secret and draws the random polynomials for one split.
func (s *Scheme) deal(secret []byte) (*polynomials, error) {
	prepared, err := prepare(secret, s.config.IntegrityCheck, s.config.Compression)
	if err != nil {
		return nil, err
	}

	return newPolynomials(prepared, prepared.Len(), int(s.threshold)-1, s.rng, s.params())
}

func (s *Scheme) params() shareParams {
	return shareParams{
		threshold:   s.threshold,
		totalShares: s.totalShares,
		integrity:   s.config.IntegrityCheck,
		compression: s.config.Compression,
	}
}
