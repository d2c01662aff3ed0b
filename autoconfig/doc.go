// Package autoconfig turns declarative configuration units into container
// beans.
//
// A Configuration groups BeanDefinitions behind activation conditions and
// declares which other configurations it must run after or before. The
// Engine orders the configurations, evaluates the conditions against the
// loaded properties and the beans registered so far, registers the
// matching beans and finally instantiates them.
//
// A bean definition never replaces an existing bean: every definition
// carries an implicit OnMissingBean for its own name, so beans registered
// by the application before Refresh take precedence.
package autoconfig
