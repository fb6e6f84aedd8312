// Package gsn implements Goal Structuring Notation on top of the term
// engine. Goals, strategies, evidence, assumptions and contexts are objects
// of the classes below; the constructors are ordinary terms taking one
// record of keyword arguments.
package gsn

import pgsn "github.com/yoriyuki/pgsn/core"

func mustInstantiate(c *pgsn.Class, attrs map[string]pgsn.Term) *pgsn.Object {
	o, err := pgsn.Instantiate(c, attrs)
	if err != nil {
		panic(err)
	}
	return o
}

var (
	NodeClass = pgsn.DefineClass(pgsn.BaseClass, pgsn.ClassDef{
		Name:       "GSN_Node",
		Attributes: []string{"description"},
	})
	SupportClass  = pgsn.DefineClass(NodeClass, pgsn.ClassDef{Name: "Support"})
	EvidenceClass = pgsn.DefineClass(SupportClass, pgsn.ClassDef{Name: "Evidence"})
	StrategyClass = pgsn.DefineClass(SupportClass, pgsn.ClassDef{
		Name:       "Strategy",
		Attributes: []string{"sub_goals"},
	})

	// Undeveloped is the support of a goal nobody has argued for yet.
	Undeveloped = mustInstantiate(SupportClass, map[string]pgsn.Term{"description": pgsn.Str("Undeveloped")})

	GoalClass = pgsn.DefineClass(NodeClass, pgsn.ClassDef{
		Name:       "Goal",
		Attributes: []string{"assumptions", "contexts", "support"},
		Defaults: map[string]pgsn.Term{
			"assumptions": pgsn.Empty,
			"contexts":    pgsn.Empty,
			"support":     Undeveloped,
		},
	})
	AssumptionClass = pgsn.DefineClass(NodeClass, pgsn.ClassDef{Name: "Assumption"})
	ContextClass    = pgsn.DefineClass(NodeClass, pgsn.ClassDef{Name: "Context"})
)

var (
	_d           = pgsn.Var("_d")
	_support     = pgsn.Var("_support")
	_assumptions = pgsn.Var("_assumptions")
	_contexts    = pgsn.Var("_contexts")
	_subGoals    = pgsn.Var("_sub_goals")
	_goals       = pgsn.Var("_goals")
	_evidence    = pgsn.Var("_evidence")
)

func describe(class *pgsn.Class) pgsn.Term {
	return pgsn.LambdaKeywords(map[string]*pgsn.Variable{"description": _d},
		pgsn.ApplyKeywords(class, map[string]any{"description": _d}), nil)
}

var (
	// Evidence {description}
	Evidence = describe(EvidenceClass)
	// Assumption {description}
	Assumption = describe(AssumptionClass)
	// Context {description}
	Context = describe(ContextClass)

	// Strategy {description, sub_goals}
	Strategy = pgsn.LambdaKeywords(
		map[string]*pgsn.Variable{"description": _d, "sub_goals": _subGoals},
		pgsn.ApplyKeywords(StrategyClass, map[string]any{"description": _d, "sub_goals": _subGoals}),
		nil)

	// Goal {description, assumptions?, contexts?, support?}
	Goal = pgsn.LambdaKeywords(
		map[string]*pgsn.Variable{
			"description": _d,
			"assumptions": _assumptions,
			"contexts":    _contexts,
			"support":     _support,
		},
		pgsn.ApplyKeywords(GoalClass, map[string]any{
			"description": _d,
			"assumptions": _assumptions,
			"contexts":    _contexts,
			"support":     _support,
		}),
		pgsn.RecordOf(map[string]any{
			"assumptions": pgsn.Empty,
			"contexts":    pgsn.Empty,
			"support":     Undeveloped,
		}))

	// Immediate supports a goal directly by a list of sub-goals.
	Immediate = pgsn.Lambda(_goals, pgsn.ApplyKeywords(Strategy, map[string]any{
		"description": "immediate",
		"sub_goals":   _goals,
	}))

	// EvidenceAsGoal wraps evidence into a goal with the same description.
	EvidenceAsGoal = pgsn.Lambda(_evidence, pgsn.ApplyKeywords(Goal, map[string]any{
		"description": pgsn.Apply(_evidence, "description"),
		"support":     _evidence,
	}))
)
