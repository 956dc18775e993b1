package domain

// LoginRecord is one fibre-channel login entry reconstructed from a
// "symaccess list logins -v" report. String fields hold the value exactly
// as it appears in the source text; the empty string means the field was
// absent (it serializes as an empty CSV cell).
type LoginRecord struct {
	// Array is the Symmetrix ID in effect when the record was created.
	Array string

	// DirectorPort is the composite "<pair>-<port>" descriptor built from
	// the director identification and director port context lines, e.g.
	// "1D-4" for director FA-1D port 004. Empty if either part was missing
	// when the record was created.
	DirectorPort string

	// DirectorWWPN is the front-end port WWN from the most recent
	// "WWN Port Name" context line.
	DirectorWWPN string

	// NodeWWN begins the record ("Originator Node wwn").
	NodeWWN string

	// PortWWN is the initiator port WWN ("Originator Port wwn").
	PortWWN string

	// InitiatorName is the user-generated name, empty when the source
	// holds the "/" placeholder.
	InitiatorName string

	// FCID is the fabric-assigned address of the login.
	FCID string

	// LoggedIn and OnFabric are the "Yes"/"No" status flags as printed.
	LoggedIn string
	OnFabric string

	// LogTime is the free-text "Last Active Log-In" timestamp. Its source
	// line finalizes the record.
	LogTime string

	// SourceFile is the report file the record was extracted from, as the
	// path was given to the run.
	SourceFile string
}
