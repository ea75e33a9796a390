/*
Package domain contains the core domain models of the fieldform engine.

It defines how form instances are addressed, how raw widget values are held, and
which typed values are written to the record model. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - ScreenPath: Hierarchical address of one entity instance, built from
    (definition id, instance index) segments starting at the form root.
  - ValueTuple: Fixed-arity raw string components of one field instance.
  - NodeDefinition: Read-only schema node (attribute or entity) supplied by the metamodel.
  - Value: Typed value written into the record model (integer, real, code, coordinate...).
*/
package domain
