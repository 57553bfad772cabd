/*
go-morphbench measures how fast two image processing backends perform the same
morphological operation while one parameter is swept, such as the image size or
the radius of the structuring element.

Each operation is registered once per backend as a Factory.  A Factory prepares
a Kernel from a scaled copy of the source image and the Kernel is then timed as an
opaque callable.  The Harness auto-ranges a batch size, repeats the batch a number
of rounds, reduces the rounds to per call milliseconds and pairs the two backends
point by point so a speed up ratio can be calculated.

Backends live in the backend subdirectory, image loading and scaling in
preprocess, tables and CSV output in report, charts in render and the process
resource sampler in monitor.  See cmd/morphbench for the command line tool.
*/
package morphbench
