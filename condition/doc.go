// Package condition decides whether a configuration unit or a bean is
// activated.
//
// A Condition inspects a Context: the loaded configuration properties, the
// beans registered so far and the capabilities the process offers. Each
// evaluation yields an Outcome with a human-readable message, and a Report
// keeps every outcome so the decisions can be shown to an operator.
//
//	cond := condition.AllOf(
//	    condition.OnProperty("multimongo", "enabled", condition.HavingValue("true"), condition.MatchIfMissing()),
//	    condition.AnyOf(
//	        condition.OnProperty("multimongo.primary", "uri"),
//	        condition.OnProperty("multimongo.primary", "host"),
//	    ),
//	)
package condition
