package main

func indexUnsupportedReason(idx IndexDescriptor) (string, bool) {
	if idx.Expression {
		return "expression key-parts are not currently supported", true
	}
	if idx.Partial {
		return "partial indexes (WHERE clause) are not currently supported", true
	}
	if len(idx.Columns) == 0 {
		return "index has no plain column key-parts", true
	}
	return "", false
}
