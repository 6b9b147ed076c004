// Package dataset defines the tabular abstraction shared by file views and the
// builder: named numeric columns of equal length.
//
// Column and Table are read-only interfaces. A file View implements them over
// mapped bytes; Series and Frame are the owned, in-memory implementations
// returned by Copy and accepted by the builder.
//
//	frame, err := file.Copy()          // owned *Frame, file can be closed
//	err = frame.AddFloat64("ratio", r) // add a derived column
//	b, err := builder.FromDataset(frame, builder.WithTemplate(file))
package dataset
