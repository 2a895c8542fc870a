// Package view holds the HTML components of the front page.
//
// Components are templ.Component values built with templ.ComponentFunc, so
// they compose with any templ-generated code and render with
// templ.Handler.
package view
