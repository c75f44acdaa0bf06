// Package models contains the GORM persistence models that map to database
// tables. They are kept separate from the domain entities so the domain layer
// stays free of ORM tags and table concerns.
//
// Layout:
//
//   - base.go: shared model embeds (BaseModel, AggregateModel)
//   - workpaper.go: workpaper context models (jobs, modules, transactions,
//     overrides, queries, tasks, freeze snapshots)
//
// Mappers on each model convert to and from the domain entities; repositories
// only ever touch the models.
package models
