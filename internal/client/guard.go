// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"errors"
	"fmt"
	"strings"
)

// View identifies a screen of the client.
type View string

const (
	ViewLogin         View = "login"
	ViewRegister      View = "register"
	ViewProducts      View = "products"
	ViewProductCreate View = "product_create"
	ViewProductEdit   View = "product_edit"
	ViewProductView   View = "product_view"
)

// LoginPath is where unauthenticated navigation is sent.
const LoginPath = "/login"

// Protected reports whether the view needs a signed-in session.
func (view View) Protected() bool {
	switch view {
	case ViewLogin, ViewRegister:
		return false
	default:
		return true
	}
}

// ErrUnknownRoute is returned for paths no view is mounted at.
var ErrUnknownRoute = errors.New("client: unknown route")

// Route is a resolved navigation target.
type Route struct {
	Path string
	View View
	// ID is the product ID for edit and view routes.
	ID string
}

// Router maps client paths to views.
//
//	/            products
//	/create      product_create
//	/edit/{id}   product_edit
//	/view/{id}   product_view
//	/login       login
//	/register    register
type Router struct{}

// Resolve maps path to its [Route].
func (Router) Resolve(path string) (Route, error) {
	clean := "/" + strings.Trim(path, "/")
	segments := strings.Split(strings.TrimPrefix(clean, "/"), "/")

	route := Route{Path: clean}
	switch {
	case clean == "/":
		route.View = ViewProducts
	case clean == "/create":
		route.View = ViewProductCreate
	case clean == LoginPath:
		route.View = ViewLogin
	case clean == "/register":
		route.View = ViewRegister
	case len(segments) == 2 && segments[0] == "edit" && segments[1] != "":
		route.View, route.ID = ViewProductEdit, segments[1]
	case len(segments) == 2 && segments[0] == "view" && segments[1] != "":
		route.View, route.ID = ViewProductView, segments[1]
	default:
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}
	return route, nil
}

// AuthState is the read side of a session. [*Session] satisfies it.
type AuthState interface {
	IsAuthenticated() bool
}

// Decision is the outcome of guarding a navigation.
type Decision struct {
	// Render is true when the requested route may be shown.
	Render bool
	Route  Route
	// RedirectTo is set when Render is false.
	RedirectTo string
}

// Guard decides whether route may render for the given session state.
// Protected routes redirect to [LoginPath] when signed out. The requested
// destination is not remembered.
func Guard(auth AuthState, route Route) Decision {
	if !route.View.Protected() || auth.IsAuthenticated() {
		return Decision{Render: true, Route: route}
	}
	return Decision{Route: route, RedirectTo: LoginPath}
}

// Navigate resolves path and guards it in one step.
func (router Router) Navigate(auth AuthState, path string) (Decision, error) {
	route, err := router.Resolve(path)
	if err != nil {
		return Decision{}, err
	}
	return Guard(auth, route), nil
}
