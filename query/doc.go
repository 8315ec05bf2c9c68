// Package query compiles SQL statement text into an executable AST.
//
// The pipeline is tokenizer -> token cursor -> recursive-descent parser.
// The dialect is deliberately small: two column types (INT, VARCHAR),
// equality/inequality/ordering comparisons, conjunctive WHERE clauses,
// and inner joins. LEFT JOIN and DISTINCT are recognized only to be
// rejected with an explicit diagnostic.
//
// # Basic Usage
//
// Parse a statement and inspect the resulting AST:
//
//	stmt, err := query.Parse("SELECT a.id FROM a JOIN b ON a.id = b.aid WHERE a.id = 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sel := stmt.(*query.SelectStmt)
//
// Parsing is fail-fast: a lexical or syntax error anywhere aborts the whole
// statement and no AST is produced. Every statement must consume all of its
// tokens; trailing text is a syntax error.
package query
