package routerconfig

import "fmt"

// RawDecl is a fully name-resolved element declaration after compound
// expansion: Name is globally unique within the compiled graph.
type RawDecl struct {
	Name     string
	Class    string
	Config   string
	Landmark string
}

// RawEdge is a fully name-resolved connection after compound
// expansion and chain desugaring (spec.md §4.7: "A -> B -> C desugars
// to A -> B, B -> C").
type RawEdge struct {
	FromName string
	FromPort int
	ToName   string
	ToPort   int
	Landmark string
}

const (
	tunnelInput  = "input"
	tunnelOutput = "output"
)

// scopeResult holds one lexical scope's (top-level config, or one
// elementclass body) worth of fully-resolved output.
type scopeResult struct {
	decls    []RawDecl
	edges    []RawEdge
	requires []string
}

// compileScope resolves one statement list into decls/edges qualified
// under prefix, inlining any compound elementclass instantiation it
// finds, per spec.md §4.7 ("the body is inlined with name prefixing
// and the tunnel connections are rewritten to the instance's actual
// neighbors").
func compileScope(stmts []Statement, prefix string, classes map[string]*ClassDef, anon *int) (scopeResult, error) {
	local := make(map[string]*ClassDef, len(classes))
	for k, v := range classes {
		local[k] = v
	}
	for _, stmt := range stmts {
		if stmt.Kind == StmtClass {
			local[stmt.Class.Name] = stmt.Class
		}
	}

	type bareDecl struct {
		name     string
		class    string
		config   string
		landmark string
	}
	var decls []bareDecl
	declared := make(map[string]bool)
	var edges []RawEdge
	var requires []string

	for _, stmt := range stmts {
		switch stmt.Kind {
		case StmtRequire:
			requires = append(requires, stmt.Require...)
		case StmtClass:
			// handled by the local-classes pre-pass above
		case StmtConnection:
			names := make([]string, len(stmt.Chain))
			for i, ep := range stmt.Chain {
				if ep.HasDecl {
					name := ep.Name
					if name == "" {
						*anon++
						name = fmt.Sprintf("%s@%d", ep.Class, *anon)
					}
					names[i] = name
					if !declared[name] {
						declared[name] = true
						decls = append(decls, bareDecl{name, ep.Class, ep.Config, stmt.Landmark})
					}
				} else {
					names[i] = ep.Name
				}
			}
			for i := 0; i+1 < len(stmt.Chain); i++ {
				from, to := stmt.Chain[i], stmt.Chain[i+1]
				fromPort, toPort := 0, 0
				if from.HasOutPort {
					fromPort = from.OutPort
				}
				if to.HasPort {
					toPort = to.Port
				}
				edges = append(edges, RawEdge{
					FromName: names[i], FromPort: fromPort,
					ToName: names[i+1], ToPort: toPort,
					Landmark: stmt.Landmark,
				})
			}
		}
	}

	var result scopeResult
	for _, d := range decls {
		cls, isCompound := local[d.class]
		if !isCompound {
			result.decls = append(result.decls, RawDecl{
				Name: prefix + d.name, Class: d.class, Config: d.config, Landmark: d.landmark,
			})
			continue
		}

		instPrefix := prefix + d.name + "/"
		body, err := compileScope(cls.Body, instPrefix, local, anon)
		if err != nil {
			return scopeResult{}, err
		}
		result.decls = append(result.decls, body.decls...)
		result.requires = append(result.requires, body.requires...)

		// Splice the instance's external neighbors in for each of its
		// tunnel-touching body edges, then drop the outer edges that
		// fed/consumed the instance (they've been replaced). body.edges
		// names are already fully resolved by the recursive call (or
		// are this instance's own bare tunnel sentinels), so spliced
		// edges go straight to result.edges: running them through this
		// frame's qualify pass below would double-prefix them.
		consumed := make(map[int]bool)
		for _, be := range body.edges {
			switch {
			case be.FromName == tunnelInput:
				for ei, oe := range edges {
					if oe.ToName == d.name && oe.ToPort == be.FromPort {
						consumed[ei] = true
						result.edges = append(result.edges, RawEdge{
							FromName: qualify(oe.FromName, prefix), FromPort: oe.FromPort,
							ToName: be.ToName, ToPort: be.ToPort, Landmark: be.Landmark,
						})
					}
				}
			case be.ToName == tunnelOutput:
				for ei, oe := range edges {
					if oe.FromName == d.name && oe.FromPort == be.ToPort {
						consumed[ei] = true
						result.edges = append(result.edges, RawEdge{
							FromName: be.FromName, FromPort: be.FromPort,
							ToName: qualify(oe.ToName, prefix), ToPort: oe.ToPort, Landmark: be.Landmark,
						})
					}
				}
			default:
				result.edges = append(result.edges, be)
			}
		}
		var remaining []RawEdge
		for ei, oe := range edges {
			if !consumed[ei] {
				remaining = append(remaining, oe)
			}
		}
		edges = remaining
	}

	for _, e := range edges {
		result.edges = append(result.edges, RawEdge{
			FromName: qualify(e.FromName, prefix), FromPort: e.FromPort,
			ToName: qualify(e.ToName, prefix), ToPort: e.ToPort,
			Landmark: e.Landmark,
		})
	}
	return result, nil
}

// qualify prefixes name unless it is a tunnel pseudo-name, which must
// stay bare for the enclosing scope's own splicing pass to recognize.
func qualify(name, prefix string) string {
	if name == tunnelInput || name == tunnelOutput {
		return name
	}
	return prefix + name
}
