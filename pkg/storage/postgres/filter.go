package postgres

// PairFilter narrows portfolio and order reads. Either both fields are set or
// neither is.
type PairFilter struct {
	Base  string
	Quote string
}

func (f PairFilter) conditions() (map[string]interface{}, error) {
	switch {
	case f.Base == "" && f.Quote == "":
		return nil, nil
	case f.Base == "" || f.Quote == "":
		return nil, ErrPartialFilter
	default:
		return map[string]interface{}{"base_asset": f.Base, "quote_asset": f.Quote}, nil
	}
}
