/*
Package form is the form instance engine.

A Session owns the session-scoped DataTree and writes through to the record model.
OpenScreen builds a Screen for one entity instance: every attribute gets a Binding
that renders and commits through its field.Adapter, multiple attributes get an
instance Navigator with previous/next, and child entities are listed as summaries
that open their own screens.

	sess := form.NewSession(model, record, form.WithLogger(logger))
	screen, err := sess.OpenScreen(ctx, form.OpenRequest{DefinitionID: model.Root().ID})
	if err != nil {
		return err
	}
	name, _ := screen.Field("name")
	err = name.Edit(ctx, domain.TupleOf("Plot 7"))

A Session is not safe for concurrent use. Continuation across screens is carried
explicitly: re-opening a path reads back whatever was last written to the tree, and
Screen.Suspend returns a NavigationResult that the next screen can be seeded from.
*/
package form
