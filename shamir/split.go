package shamir

// Split divides secret into TotalShares shares, any Threshold of which
// reconstruct it. Each call draws fresh coefficients.
func (s *Scheme) Split(secret []byte) ([]Share, error) {
	polys, err := s.deal(secret)
	if err != nil {
		return nil, err
	}
	defer polys.destroy()

	shares := polys.shares(1, int(s.totalShares), s.workers())

	s.logger.Debug("secret split",
		"shares", len(shares),
		"threshold", s.threshold,
		"secret_bytes", len(secret),
		"share_bytes", polys.length,
		"locked", polys.coefficients.Locked(),
	)

	return shares, nil
}
