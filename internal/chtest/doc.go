// Package chtest provides a minimal in-process stand-in for the
// database's HTTP endpoint: tests script a sequence of responses and
// the server plays them back in request order, so the core package's
// tests never depend on a real database (spec §9 design note "Mock
// server").
package chtest
